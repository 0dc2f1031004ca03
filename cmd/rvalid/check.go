package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/rvalid/internal/config"
	verrors "github.com/vango-dev/rvalid/internal/errors"
	"github.com/vango-dev/rvalid/pkg/ruleset"
	"github.com/vango-dev/rvalid/pkg/server"
	"github.com/vango-dev/rvalid/pkg/validation"
)

type checkOptions struct {
	rules      string
	configPath string
	deep       bool
	pull       bool
	showAll    bool
	json       bool
}

func checkCmd() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check [flags] <document>",
		Short: "Validate a document against a rule set",
		Long: `Validate a JSON or YAML document against a rule set.

The rule set is read from a file or an s3://bucket/key URI. Documents
ending in .yaml or .yml are read as YAML, anything else as JSON.

The command exits with status 1 when the document is invalid.`,
		Example: `  rvalid check --rules login.yaml login.json
  rvalid check --rules s3://forms/signup.yaml --deep signup.yaml
  rvalid check --rules login.yaml --show-all --json login.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.rules, "rules", "r", "", "Rule set file or s3:// URI (required)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file")
	cmd.Flags().BoolVar(&opts.deep, "deep", false, "Validate nested fields, not only top-level ones")
	cmd.Flags().BoolVar(&opts.pull, "pull", false, "Evaluate the group on demand instead of tracking changes")
	cmd.Flags().BoolVar(&opts.showAll, "show-all", false, "Mark every field modified so its message is visible")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("rules")

	return cmd
}

func runCheck(ctx context.Context, out io.Writer, docPath string, opts checkOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	validation.Init(cfg.Validation)

	rs, err := loadRuleSet(ctx, opts.rules, cfg.S3)
	if err != nil {
		return err
	}

	doc, err := readDocument(docPath)
	if err != nil {
		return err
	}

	model, err := ruleset.Bind(rs, doc, nil)
	if err != nil {
		return errors.Wrapf(err, "bind rule set %s", rs.Name)
	}

	var groupOpts []validation.Option
	if opts.deep {
		groupOpts = append(groupOpts, validation.WithDeep(true))
	}
	if opts.pull {
		groupOpts = append(groupOpts, validation.WithMode(validation.ModePull))
	}
	group := model.Group(groupOpts...)
	defer group.Dispose()

	if opts.showAll {
		group.ShowAllMessages()
	}

	report := newCheckReport(model, group)
	if opts.json {
		err = report.writeJSON(out)
	} else {
		err = report.writeText(out, docPath, rs.Name)
	}
	if err != nil {
		return err
	}

	if !report.resp.Valid {
		return errInvalid
	}
	return nil
}

// loadRuleSet loads a rule set, creating an S3 client for s3:// URIs.
func loadRuleSet(ctx context.Context, uri string, s3cfg ruleset.S3Config) (*ruleset.RuleSet, error) {
	var loadOpts []ruleset.LoadOption
	if strings.HasPrefix(uri, "s3://") {
		client, err := ruleset.NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		loadOpts = append(loadOpts, ruleset.WithObjectGetter(client))
	}
	return ruleset.Load(ctx, uri, loadOpts...)
}

// readDocument reads a JSON or YAML document chosen by file extension.
func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read document %s", path)
	}

	doc := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, verrors.New("V021").
			WithDetailf("%s: %v", path, err).
			Wrap(err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

type fieldMessage struct {
	path    string
	message string
}

type checkReport struct {
	resp    server.ValidateResponse
	members []fieldMessage
}

// newCheckReport collects the group result and the message of every
// invalid member, named by its path in the model.
func newCheckReport(model *ruleset.Model, group *validation.Group) *checkReport {
	paths := make(map[*validation.Observable]string)
	for _, path := range model.Paths() {
		paths[model.Field(path)] = path
	}

	errs := group.Errors()
	r := &checkReport{
		resp: server.ValidateResponse{
			Valid:  len(errs) == 0,
			Errors: errs,
			Fields: make(map[string]string),
		},
	}

	cfg := validation.CurrentConfig()
	for _, member := range group.Members() {
		if member.IsValid() {
			continue
		}
		path := paths[member]
		r.members = append(r.members, fieldMessage{path: path, message: member.Error()})
		if msg := validation.VisibleMessage(member, cfg); msg != "" {
			r.resp.Fields[path] = msg
		}
	}
	return r
}

func (r *checkReport) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.resp)
}

func (r *checkReport) writeText(w io.Writer, docPath, name string) error {
	if r.resp.Valid {
		_, err := fmt.Fprintf(w, "%s %s is valid against %s\n",
			color.GreenString("✓"), docPath, name)
		return err
	}

	fmt.Fprintf(w, "%s %s has %d error(s) against %s\n",
		color.RedString("✗"), docPath, len(r.members), name)
	for _, m := range r.members {
		fmt.Fprintf(w, "  • %s: %s\n", color.YellowString(m.path), m.message)
	}
	return nil
}
