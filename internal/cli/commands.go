package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lexiqai/voice-input/internal/commands"
)

func init() {
	list := &cobra.Command{
		Use:   "commands",
		Short: "List voice commands, optionally for one key stage",
		Run:   runCommands,
	}
	list.Flags().String("stage", "", "Key stage: early-years, ks1, ks2, ks3 or ks4")

	match := &cobra.Command{
		Use:   "match [phrase...]",
		Short: "Resolve a spoken phrase to a command",
		Args:  cobra.MinimumNArgs(1),
		Run:   runMatch,
	}
	match.Flags().String("stage", "ks2", "Key stage")

	suggest := &cobra.Command{
		Use:   "suggest [partial]",
		Short: "Suggest commands for a partial phrase",
		Args:  cobra.ExactArgs(1),
		Run:   runSuggest,
	}
	suggest.Flags().String("stage", "ks2", "Key stage")

	list.AddCommand(match, suggest)
	RootCmd.AddCommand(list)
}

func stageFlag(cmd *cobra.Command) (commands.KeyStage, bool) {
	raw, _ := cmd.Flags().GetString("stage")
	if raw == "" {
		return "", false
	}
	ks, ok := commands.ParseKeyStage(raw)
	if !ok {
		exitErr("stage", fmt.Errorf("unknown key stage %q", raw))
	}
	return ks, true
}

func loadRegistry() *commands.Registry {
	r, err := commands.Load()
	if err != nil {
		exitErr("load commands", err)
	}
	return r
}

func runCommands(cmd *cobra.Command, _ []string) {
	r := loadRegistry()
	cmds := r.All()
	if ks, ok := stageFlag(cmd); ok {
		cmds = r.ForStage(ks)
	}
	printCommands(cmds)
}

func runMatch(cmd *cobra.Command, args []string) {
	ks, _ := stageFlag(cmd)
	c, ok := loadRegistry().FindCommandByPhrase(strings.Join(args, " "), ks)
	if !ok {
		fmt.Fprintln(os.Stderr, "no matching command")
		os.Exit(1)
	}
	printCommands([]commands.Command{*c})
}

func runSuggest(cmd *cobra.Command, args []string) {
	ks, _ := stageFlag(cmd)
	printCommands(loadRegistry().Suggestions(args[0], ks))
}

func printCommands(cmds []commands.Command) {
	if formatFlag == "text" {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, c := range cmds {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Phrase, c.Action, c.Description)
		}
		w.Flush()
		return
	}
	if cmds == nil {
		cmds = []commands.Command{}
	}
	b, _ := json.MarshalIndent(cmds, "", "  ")
	fmt.Println(string(b))
}
