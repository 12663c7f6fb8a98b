package cli

import (
	"context"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Group: groupSetup,
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, a)
		},
	}
}

func execPrintConfig(io *IO, a *app) error {
	cfg := a.cfg
	rules := cfg.Rules.RuleConfig()

	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("state_dir=" + cfg.StateDirAbs)
	io.Println("graph_base_url=" + cfg.GraphBaseURL)
	io.Println("graph_api_version=" + cfg.GraphAPIVersion)
	io.Println("fetch_cap=" + strconv.Itoa(cfg.FetchCap))
	io.Println("rules.keywords=" + strings.Join(rules.Keywords, ","))
	io.Println("rules.match_all=" + strconv.FormatBool(rules.MatchAll))
	io.Println("rules.case_sensitive=" + strconv.FormatBool(rules.CaseSensitive))
	io.Println("rules.min_mentions=" + strconv.Itoa(rules.MinMentions))
	io.Println("rules.distinct_mentions=" + strconv.FormatBool(rules.DistinctMentions))
	io.Println("rules.max_entries=" + strconv.Itoa(rules.MaxEntriesPerUser))
	io.Println("rules.blacklist=" + strconv.Itoa(len(rules.Blacklist)) + " users")

	io.Println("")
	io.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		io.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			io.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Project != "" {
			io.Println("project_config=" + cfg.Sources.Project)
		}
	}

	return nil
}
