package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pankajredekar/shopadmin/internal/permission"
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Show the role permission matrix",
	Long:  "Lists every permission and the roles that grant it",
	Run: func(cmd *cobra.Command, args []string) {
		printRoles(os.Stdout)
	},
}

func printRoles(out io.Writer) {
	roles := permission.Roles()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(roles)+1)
	header = append(header, "PERMISSION")
	for _, r := range roles {
		header = append(header, strings.ToUpper(string(r)))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, p := range permission.All {
		row := []string{string(p)}
		for _, r := range roles {
			mark := "-"
			if permission.For(r).Has(p) {
				mark = "✓"
			}
			row = append(row, mark)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
