package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/U-Jay-git/ResumeRise/internal/analysis"
	"github.com/U-Jay-git/ResumeRise/internal/document"
	"github.com/U-Jay-git/ResumeRise/internal/logger"
	"github.com/U-Jay-git/ResumeRise/internal/report"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptMatched   = "Show matched skills"
	PromptMissing   = "Show missing skills"
	PromptBreakdown = "Show category breakdown"
	PromptToFile    = "Dump result to file"
	PromptExit      = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptMatched, PromptMissing, PromptBreakdown, PromptToFile, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a resume against a job description",
	Example: `  resumerise match --resume cv.pdf --job job.txt
  resumerise match --resume-text "Python and React" --job-text "Need Python, Java, React"
  cat cv.txt | resumerise match --resume - --job job.txt -i`,
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("resume", "", "resume file (pdf, docx, txt) or - for stdin")
	matchCmd.Flags().String("job", "", "job description file (txt, md, pdf, docx)")
	matchCmd.Flags().String("resume-text", "", "resume text given inline")
	matchCmd.Flags().String("job-text", "", "job description text given inline")
	matchCmd.Flags().BoolP("interactive", "i", false, "explore the result in an interactive menu")
	matchCmd.Flags().Bool("breakdown", true, "include per-category skills in the output")

	viper.BindPFlag("breakdown", matchCmd.Flags().Lookup("breakdown"))
}

func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	resumeText, err := readText(cmd, "resume", "resume-text", os.Stdin, logger)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	jobText, err := readText(cmd, "job", "job-text", os.Stdin, logger)
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}

	analyzer, cleanup, err := newAnalyzer(ctx, config, nil, logger)
	if err != nil {
		logger.Fatal("loading taxonomy", zap.Error(err), zap.String("hint", "set taxonomy in the config file or pass --taxonomy"))
	}
	defer cleanup()

	resp := analyzer.Analyze(ctx, analysis.Request{ResumeText: resumeText, JobText: jobText})

	pretty, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))

	if interactive, _ := cmd.Flags().GetBool("interactive"); !interactive {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, cmd.OutOrStdout(), logger, resp); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, out io.Writer, logger *zap.Logger, resp *report.Response) error {
	switch action {
	case PromptMatched:
		printList(out, "matched", resp.MatchedSkills)
		return nil
	case PromptMissing:
		printList(out, "missing", resp.MissingSkills)
		return nil
	case PromptBreakdown:
		if resp.Breakdown == nil {
			logger.Info("breakdown is disabled", zap.String("hint", "run with --breakdown"))
			return nil
		}
		printBreakdown(out, resp.Breakdown)
		return nil
	case PromptToFile:
		filename, err := dumpToTmpFile(resp)
		if err != nil {
			return fmt.Errorf("dump result to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// readText resolves text from the file flag or the inline flag. Exactly one
// must be set; "-" reads from stdin. An inline flag given as "" and a file
// without text both yield empty text.
func readText(cmd *cobra.Command, fileFlag, textFlag string, stdin io.Reader, logger *zap.Logger) (string, error) {
	path, _ := cmd.Flags().GetString(fileFlag)
	text, _ := cmd.Flags().GetString(textFlag)
	textSet := cmd.Flags().Changed(textFlag)

	switch {
	case path != "" && textSet:
		return "", fmt.Errorf("--%s and --%s are mutually exclusive", fileFlag, textFlag)
	case textSet:
		return text, nil
	case path == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		text, err := document.Extract(path, data)
		if errors.Is(err, document.ErrNoText) {
			logger.Warn("file has no text, scoring it as empty", zap.String("file", path))
			return "", nil
		}
		return text, err
	default:
		return "", fmt.Errorf("one of --%s or --%s is required", fileFlag, textFlag)
	}
}

func printList(out io.Writer, title string, skills []string) {
	if len(skills) == 0 {
		fmt.Fprintf(out, "%s: none\n", title)
		return
	}
	fmt.Fprintf(out, "%s (%d): %s\n", title, len(skills), strings.Join(skills, ", "))
}

func printBreakdown(out io.Writer, b *report.Breakdown) {
	categories := make([]string, 0, len(b.JobSkills))
	for category := range b.JobSkills {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Fprintf(out, "%s\n", category)
		fmt.Fprintf(out, "  required: %s\n", strings.Join(b.JobSkills[category], ", "))
		fmt.Fprintf(out, "  matched:  %s\n", strings.Join(b.Matched[category], ", "))
		fmt.Fprintf(out, "  missing:  %s\n", strings.Join(b.Missing[category], ", "))
	}
}

func dumpToTmpFile(resp *report.Response) (string, error) {
	file, err := os.CreateTemp("", "match_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return "", err
	}
	return file.Name(), nil
}
