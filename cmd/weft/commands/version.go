// cmd/weft/commands/version.go
package commands

import "fmt"

// Version is the module's release version, overridable at link time via
// -ldflags "-X weft/cmd/weft/commands.Version=...".
var Version = "0.1.0"

// VersionCommand prints the CLI's version.
func VersionCommand(args []string) error {
	fmt.Println("weft", Version)
	return nil
}
