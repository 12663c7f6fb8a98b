package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/raffle/internal/raffle"
)

// ruleFlags are the apply flags. Set flags override the config's rules block.
type ruleFlags struct {
	fs               *flag.FlagSet
	keywords         *[]string
	matchAll         *bool
	caseSensitive    *bool
	minMentions      *int
	distinctMentions *bool
	maxEntries       *int
	blacklist        *[]string
	blacklistFile    *string
}

func newRuleFlags(fs *flag.FlagSet) *ruleFlags {
	return &ruleFlags{
		fs:               fs,
		keywords:         fs.StringArrayP("keyword", "k", nil, "Required keyword, repeatable or comma separated"),
		matchAll:         fs.Bool("match-all", false, "Require every keyword instead of any"),
		caseSensitive:    fs.Bool("case-sensitive", false, "Match keywords case-sensitively"),
		minMentions:      fs.Int("min-mentions", 0, "Minimum @-mentions per comment"),
		distinctMentions: fs.Bool("distinct-mentions", false, "Count distinct mentioned users only"),
		maxEntries:       fs.Int("max-entries", 1, "Maximum eligible entries per user"),
		blacklist:        fs.StringArrayP("blacklist", "b", nil, "Excluded username, repeatable or comma separated"),
		blacklistFile:    fs.String("blacklist-file", "", "File with one excluded username per line"),
	}
}

// resolve merges the set flags over base. Keyword flags replace the
// configured keywords; blacklist flags extend the configured blacklist.
func (f *ruleFlags) resolve(base raffle.RuleConfig, workDir string) (raffle.RuleConfig, error) {
	cfg := base

	if f.fs.Changed("keyword") {
		cfg.Keywords = nil
		for _, raw := range *f.keywords {
			cfg.Keywords = append(cfg.Keywords, raffle.ParseKeywords(raw)...)
		}
	}

	if f.fs.Changed("match-all") {
		cfg.MatchAll = *f.matchAll
	}

	if f.fs.Changed("case-sensitive") {
		cfg.CaseSensitive = *f.caseSensitive
	}

	if f.fs.Changed("min-mentions") {
		cfg.MinMentions = *f.minMentions
	}

	if f.fs.Changed("distinct-mentions") {
		cfg.DistinctMentions = *f.distinctMentions
	}

	if f.fs.Changed("max-entries") {
		cfg.MaxEntriesPerUser = *f.maxEntries
	}

	var names []string
	for _, raw := range *f.blacklist {
		names = append(names, strings.Split(raw, ",")...)
	}

	if *f.blacklistFile != "" {
		fromFile, err := readBlacklistFile(*f.blacklistFile, workDir)
		if err != nil {
			return raffle.RuleConfig{}, err
		}

		names = append(names, fromFile...)
	}

	if len(names) > 0 {
		merged := raffle.BlacklistOf(names...)
		for user := range base.Blacklist {
			merged[user] = true
		}

		cfg.Blacklist = merged
	}

	return cfg, nil
}

func readBlacklistFile(name, workDir string) ([]string, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blacklist file: %w", err)
	}

	var names []string

	for line := range strings.Lines(string(data)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		names = append(names, line)
	}

	return names, nil
}

// ApplyCmd returns the apply command.
func ApplyCmd(a *app) *Command {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	rules := newRuleFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "apply [flags]",
		Short: "Recompute the eligible entries from rules",
		Group: groupDraw,
		Examples: []string{
			"apply -k win,prize --min-mentions 2 --distinct-mentions",
			"apply --max-entries 3 --blacklist-file bots.txt",
		},
		Long: `Recompute the eligible entries from all entries.

Rules come from the "rules" block of the config; flags override it. An entry
is eligible when its user is not blacklisted, its comment contains the
keywords, it has enough @-mentions and its user has not reached the
per-user entry cap. Earlier entries win the cap.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			cfg, err := rules.resolve(a.cfg.Rules.RuleConfig(), a.cfg.EffectiveCwd)
			if err != nil {
				return err
			}

			var stats raffle.Stats

			err = a.updateSession(ctx, func(sess *raffle.Session) error {
				var applyErr error

				stats, applyErr = sess.ApplyRules(cfg)

				return applyErr
			})
			if err != nil {
				return err
			}

			if stats.Total == 0 {
				o.Warn("no entries loaded", "run import, paste or fetch first")
			}

			o.Println(formatStats(stats))

			return nil
		},
	}
}
