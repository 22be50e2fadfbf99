// Command usjconv converts scripture documents between USFM, USX and USJ.
// It also detects, validates and round-trip verifies them, and can serve
// conversions over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/usjconv/core/convert"
	"github.com/FocuswithJustin/usjconv/core/encoding"
	"github.com/FocuswithJustin/usjconv/core/formats"
	"github.com/FocuswithJustin/usjconv/core/usfm"
	"github.com/FocuswithJustin/usjconv/core/usj"
	"github.com/FocuswithJustin/usjconv/internal/api"
	"github.com/FocuswithJustin/usjconv/internal/config"
	"github.com/FocuswithJustin/usjconv/internal/fileutil"
	"github.com/FocuswithJustin/usjconv/internal/logging"

	// Register the USFM, USX and USJ handlers.
	_ "github.com/FocuswithJustin/usjconv/internal/embedded"
)

var version = "0.1.0"

// CLI defines the command-line interface for usjconv.
type CLI struct {
	// Global flags
	ConfigFile string `name:"config" short:"c" help:"Path to YAML configuration file" type:"path"`
	LogLevel   string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat  string `name:"log-format" help:"Log format (text, json)"`

	Convert  ConvertCmd  `cmd:"" help:"Convert a document between formats"`
	Detect   DetectCmd   `cmd:"" help:"Detect the format of a document"`
	Validate ValidateCmd `cmd:"" help:"Validate a document against the USJ rules"`
	Verify   VerifyCmd   `cmd:"" help:"Round-trip a document through its own format"`
	Tokens   TokensCmd   `cmd:"" help:"Print the USFM token stream of a file"`
	Formats  FormatsCmd  `cmd:"" help:"List supported formats"`
	Config   ConfigCmd   `cmd:"" help:"Print the effective configuration"`
	Serve    ServeCmd    `cmd:"" help:"Start the HTTP conversion service"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// Globals is bound into every command's Run method.
type Globals struct {
	Ctx    context.Context
	Config *config.Config
	Out    io.Writer
}

// ConvertCmd converts a document.
type ConvertCmd struct {
	Input      string `arg:"" help:"Input file ('-' for stdin; .xz and .gz are decompressed)"`
	Output     string `short:"o" default:"-" help:"Output file ('-' for stdout; .xz and .gz are compressed)"`
	From       string `short:"f" help:"Source format id (detected when omitted)"`
	To         string `short:"t" help:"Target format id (from the output extension, else usj)"`
	NoSIDs     bool   `name:"no-sids" help:"Do not assign chapter and verse sids"`
	NoValidate bool   `name:"no-validate" help:"Skip validation"`
	Strict     bool   `help:"Fail when validation reports issues"`
	Pretty     bool   `help:"Indent JSON output"`
	Normalize  bool   `help:"NFC-normalize text"`
}

func (c *ConvertCmd) Run(g *Globals) error {
	data, err := fileutil.ReadFile(c.Input)
	if err != nil {
		return err
	}
	to, err := c.target()
	if err != nil {
		return err
	}

	defaults := g.Config.Convert
	res, err := convert.Convert(g.Ctx, data, convert.Options{
		From:       c.From,
		To:         to,
		Name:       inputName(c.Input),
		AssignSIDs: defaults.AssignSIDs && !c.NoSIDs,
		Validate:   defaults.Validate && !c.NoValidate,
		Pretty:     defaults.Pretty || c.Pretty,
		Normalize:  defaults.Normalize || c.Normalize,
	})
	if err != nil {
		return err
	}
	for _, issue := range res.Issues {
		logging.Warn("validation issue", "issue", issue.Error())
	}
	if c.Strict && len(res.Issues) > 0 {
		return fmt.Errorf("%d validation issues", len(res.Issues))
	}

	if c.Output == fileutil.StdioPath {
		_, err = g.Out.Write(res.Output)
		return err
	}
	if err := fileutil.WriteFile(c.Output, res.Output); err != nil {
		return err
	}
	logging.Info("wrote output", "path", c.Output, "from", res.From, "to", res.To, "digest", res.Digest)
	return nil
}

// target picks the output format: the flag, then the output extension,
// then USJ.
func (c *ConvertCmd) target() (string, error) {
	if c.To != "" || c.Output == fileutil.StdioPath {
		return c.To, nil
	}
	f, _, err := formats.Detect(fileutil.TrimCompressionExt(c.Output), nil)
	if err != nil {
		return "", fmt.Errorf("cannot infer target format from %s, use --to: %w", c.Output, err)
	}
	return f.ID(), nil
}

// DetectCmd reports which handlers claim a file.
type DetectCmd struct {
	Path string `arg:"" help:"File to detect ('-' for stdin)"`
}

func (c *DetectCmd) Run(g *Globals) error {
	data, err := fileutil.ReadFile(c.Path)
	if err != nil {
		return err
	}
	name := inputName(c.Path)

	fmt.Fprintf(g.Out, "Detecting format of: %s\n\n", c.Path)
	for _, f := range formats.List() {
		res := f.Handler.Detect(name, data)
		if res != nil && res.Detected {
			fmt.Fprintf(g.Out, "  [MATCH] %s: %s\n", f.ID(), res.Reason)
		} else if res != nil {
			fmt.Fprintf(g.Out, "  [no]    %s: %s\n", f.ID(), res.Reason)
		}
	}

	f, res, err := formats.Detect(name, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "\nDetected: %s (%s)\n", f.ID(), res.Reason)
	return nil
}

// ValidateCmd validates a document.
type ValidateCmd struct {
	Path string `arg:"" help:"File to validate ('-' for stdin)"`
	From string `short:"f" help:"Source format id (detected when omitted)"`
}

func (c *ValidateCmd) Run(g *Globals) error {
	data, err := fileutil.ReadFile(c.Path)
	if err != nil {
		return err
	}
	src, err := convert.Source(c.From, inputName(c.Path), data)
	if err != nil {
		return err
	}
	doc, err := convert.Decode(g.Ctx, src, data, convert.Options{})
	if err != nil {
		return err
	}

	issues := usj.Validate(doc)
	if len(issues) == 0 {
		digest, err := usj.Digest(doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(g.Out, "valid %s %s\n", src.ID(), digest)
		return nil
	}
	for _, msg := range convert.IssueStrings(issues) {
		fmt.Fprintf(g.Out, "  %s\n", msg)
	}
	return fmt.Errorf("%s: %d validation issues", c.Path, len(issues))
}

// VerifyCmd checks that a document survives a round trip.
type VerifyCmd struct {
	Path string `arg:"" help:"File to verify ('-' for stdin)"`
	From string `short:"f" help:"Source format id (detected when omitted)"`
}

func (c *VerifyCmd) Run(g *Globals) error {
	data, err := fileutil.ReadFile(c.Path)
	if err != nil {
		return err
	}
	res, err := convert.Verify(g.Ctx, data, convert.Options{From: c.From, Name: inputName(c.Path)})
	if err != nil {
		return err
	}
	if !res.Equal {
		fmt.Fprintf(g.Out, "MISMATCH %s %s != %s\n", res.Format, res.Digest, res.RoundTripDigest)
		return fmt.Errorf("%s round trip changed the document", res.Format)
	}
	fmt.Fprintf(g.Out, "OK %s %s\n", res.Format, res.Digest)
	return nil
}

// TokensCmd dumps the USFM token stream.
type TokensCmd struct {
	Path string `arg:"" help:"USFM file ('-' for stdin)"`
}

func (c *TokensCmd) Run(g *Globals) error {
	data, err := fileutil.ReadFile(c.Path)
	if err != nil {
		return err
	}
	text, err := encoding.DecodeText(data)
	if err != nil {
		return err
	}
	tokens, err := usfm.Tokenize(text)
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		fmt.Fprintf(g.Out, "%d:%d\t%-18s %q\n", tok.Pos.Line, tok.Pos.Column, tok.Kind, tok.Value)
	}
	return nil
}

// FormatsCmd lists the registered formats.
type FormatsCmd struct {
	JSON bool `help:"Print manifests as JSON"`
}

func (c *FormatsCmd) Run(g *Globals) error {
	list := formats.List()
	if c.JSON {
		manifests := make([]*formats.Manifest, len(list))
		for i, f := range list {
			manifests[i] = f.Manifest
		}
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(manifests)
	}
	for _, f := range list {
		m := f.Manifest
		fmt.Fprintf(g.Out, "%-6s %-6s %-20s %s\n", m.ID, m.Name, strings.Join(m.Extensions, " "), m.MediaType)
	}
	return nil
}

// ConfigCmd prints the configuration after file, environment and flags.
type ConfigCmd struct{}

func (c *ConfigCmd) Run(g *Globals) error {
	data, err := config.Dump(g.Config)
	if err != nil {
		return err
	}
	_, err = g.Out.Write(data)
	return err
}

// ServeCmd runs the HTTP service until interrupted.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides the configuration)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg := g.Config
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	api.Version = version

	ctx, stop := signal.NotifyContext(g.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := api.New(cfg.Server, cfg.Convert).Run(ctx); err != nil {
		logging.Error("server stopped", "error", err.Error())
		return err
	}
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.Out, "usjconv version %s\n", version)
	return nil
}

// inputName is the file name used for detection: compression suffixes are
// dropped and stdin has no name.
func inputName(path string) string {
	if path == fileutil.StdioPath {
		return ""
	}
	return fileutil.TrimCompressionExt(path)
}

// loadConfig layers the configuration file, the environment and the global
// flags, then installs the logger.
func (cli *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Log.Format = cli.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	level, format, err := cfg.Logging()
	if err != nil {
		return nil, err
	}
	logging.InitLogger(level, format)
	logging.Debug("configuration loaded", "file", cli.ConfigFile, "log_level", cfg.Log.Level, "addr", cfg.Server.Addr)
	return cfg, nil
}

func run(args []string, stdout io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("usjconv"),
		kong.Description("USFM, USX and USJ scripture document converter"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, os.Stderr),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	return ctx.Run(&Globals{Ctx: context.Background(), Config: cfg, Out: stdout})
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "usjconv: %v\n", err)
		os.Exit(1)
	}
}
