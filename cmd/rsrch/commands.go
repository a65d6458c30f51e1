package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pders01/rsrch/internal/analysis"
	"github.com/pders01/rsrch/internal/config"
	"github.com/pders01/rsrch/internal/debuglog"
	"github.com/pders01/rsrch/internal/plugins"
	"github.com/pders01/rsrch/internal/render"
	"github.com/pders01/rsrch/internal/session"
	"github.com/pders01/rsrch/internal/tui"
	"github.com/pders01/rsrch/internal/validation"
)

var (
	askJSON    bool
	renderFile string
	renderJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [query...]",
	Short: "Submit one question and print the answer",
	Long:  "Submit one question and print the answer. The query is read from standard input when no arguments are given.",
	RunE:  runAsk,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a saved answer without contacting the service",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print blocks as JSON")
	renderCmd.Flags().StringVarP(&renderFile, "file", "f", "", "Answer file (default: standard input)")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "Print blocks as JSON")
}

// output is the JSON shape printed by --json.
type output struct {
	Query    string             `json:"query,omitempty"`
	Articles []article          `json:"articles,omitempty"`
	Blocks   []render.Block     `json:"blocks"`
	Tally    map[render.Tag]int `json:"tally"`
	Error    string             `json:"error,omitempty"`
}

type article struct {
	URL    string `json:"url"`
	Source string `json:"source,omitempty"`
	ID     string `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// describeArticles validates and identifies the article URLs in query.
func describeArticles(query string) []article {
	sources := plugins.DefaultRegistry()
	refs := validation.NewArticleURLValidator().ArticleRefs(query)

	out := make([]article, 0, len(refs))
	for _, ref := range refs {
		a := article{URL: ref.URL}
		if !ref.OK() {
			a.Error = ref.Err.Error()
		} else if info, err := sources.Describe(ref.URL); err == nil {
			a.Source, a.ID = info.Source, info.ID
		}
		out = append(out, a)
	}
	return out
}

func runAsk(cmd *cobra.Command, args []string) error {
	raw := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 4*validation.MaxQueryLength+1))
		if err != nil {
			return fmt.Errorf("reading query: %w", err)
		}
		raw = string(data)
	}

	query, err := validation.NormalizeQuery(raw)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	articles := describeArticles(query)
	for _, a := range articles {
		if a.Error != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", a.URL, a.Error)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := session.New()
	runErr := s.Run(ctx, analysis.NewClient(cfg), query)

	if askJSON {
		out := output{Query: s.Query(), Articles: articles, Blocks: s.Blocks(), Error: s.Err()}
		out.Tally = render.Tally(out.Blocks)
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
		return runErr
	}

	if runErr != nil {
		return runErr
	}
	return writeTerminal(cmd.OutOrStdout(), cfg, s.Blocks())
}

func runRender(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if renderFile != "" {
		path, err := validation.ValidateInputFile(renderFile)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening answer file: %w", err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(io.LimitReader(in, validation.MaxInputFileBytes))
	if err != nil {
		return fmt.Errorf("reading answer: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	blocks := render.Render(data)
	if renderJSON {
		return writeJSON(cmd.OutOrStdout(), output{Blocks: blocks, Tally: render.Tally(blocks)})
	}
	return writeTerminal(cmd.OutOrStdout(), cfg, blocks)
}

func writeJSON(w io.Writer, out output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

func writeTerminal(w io.Writer, cfg *config.Config, blocks []render.Block) error {
	palette := render.DefaultPalette().WithColors(cfg.UI.Tags.Map())

	rows := []string{palette.Title.Lipgloss().Render(tui.ResultsTitle)}
	if len(blocks) == 0 {
		rows = append(rows, tui.MsgNoFindings)
	} else {
		rows = append(rows, render.Summary(blocks), "", render.Terminal(blocks, palette, outputWidth(cfg)))
	}

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, rows...))
	return err
}

// outputWidth wraps to the terminal when stdout is one, and to the
// configured maximum otherwise.
func outputWidth(cfg *config.Config) int {
	width := cfg.UI.Result.WordWrapMaxWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && (width <= 0 || w < width) {
		width = w
	}
	return width
}
