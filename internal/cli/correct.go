package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexiqai/voice-input/internal/correction"
	"github.com/lexiqai/voice-input/internal/dictation"
)

func init() {
	cmd := &cobra.Command{
		Use:   "correct [transcript...]",
		Short: "Run accent or age correction over a transcript",
		Args:  cobra.MinimumNArgs(1),
		Run:   runCorrect,
	}

	cmd.Flags().String("accent", correction.DefaultProfileID, "Accent profile: "+strings.Join(correction.ProfileIDs(), ", "))
	cmd.Flags().String("age-group", "", "Age group; overrides --accent when set")
	cmd.Flags().Bool("punctuate", false, "Apply spoken punctuation commands after correction")

	RootCmd.AddCommand(cmd)
}

func runCorrect(cmd *cobra.Command, args []string) {
	accent, _ := cmd.Flags().GetString("accent")
	ageGroup, _ := cmd.Flags().GetString("age-group")
	punctuate, _ := cmd.Flags().GetBool("punctuate")

	if _, ok := correction.LookupProfile(accent); !ok {
		exitErr("correct", fmt.Errorf("unknown accent profile %q", accent))
	}
	if ageGroup != "" {
		if _, ok := correction.ParseAgeGroup(ageGroup); !ok {
			exitErr("correct", fmt.Errorf("unknown age group %q", ageGroup))
		}
	}

	var corrector correction.Corrector = correction.NewAccentRecognizer(correction.AccentOptions{Profile: accent})
	if ageGroup != "" {
		corrector = correction.NewAgeRecognizer(ageGroup)
	}

	raw := strings.Join(args, " ")
	out := corrector.Apply(raw)
	if punctuate {
		out = dictation.ApplyPunctuation(out)
	}

	if formatFlag == "text" {
		fmt.Println(out)
		return
	}
	b, _ := json.MarshalIndent(correction.Result{Transcript: out, Raw: raw, Confidence: 1}, "", "  ")
	fmt.Println(string(b))
}
