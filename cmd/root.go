// Package cmd implements the CLI command structure for journal.
package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/journal-go/internal/config"
	"github.com/nibzard/journal-go/internal/journal"
	"github.com/nibzard/journal-go/internal/logging"
	"github.com/nibzard/journal-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the journal CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	logger := logging.FromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps)

	// Determine the subcommand. With no args, default to "list".
	subcommand := "list"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		if !strings.HasPrefix(remainingArgs[0], "-") {
			subcommand = remainingArgs[0]
			remainingArgs = remainingArgs[1:]
		}
	}

	switch subcommand {
	case "add":
		return addCommand(cfg, logger, remainingArgs)
	case "done":
		return doneCommand(cfg, logger, remainingArgs)
	case "list", "ls":
		return listCommand(cfg, remainingArgs)
	case "search":
		return searchCommand(cfg, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// addCommand appends a new task to the journal.
func addCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("journal add", flag.ContinueOnError)
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	priorityFlag := fs.String("priority", "", "Priority (low|medium|high)")
	categoryFlag := fs.String("category", "", "Category label")

	if err := fs.Parse(args); err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return &journal.InvalidInputError{Reason: "task text is required"}
	}

	priority, err := journal.ParsePriority(*priorityFlag)
	if err != nil {
		return err
	}
	category := *categoryFlag

	// Prompt only when running interactively and flags did not decide.
	if *priorityFlag == "" && ui.IsTTY(os.Stdin) {
		priority, err = promptPriority(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
	}
	if *categoryFlag == "" && ui.IsTTY(os.Stdin) {
		category = promptCategory(os.Stdin, os.Stdout)
	}

	store := journal.NewStore(cfg.JournalFile)
	task, err := store.Add(text, *due, priority, category)
	if err != nil {
		return err
	}

	logger.Debug("task added", "id", task.ID, "priority", task.Priority)
	fmt.Printf("Added task %d: %s\n", task.ID, task.Text)
	return nil
}

// promptPriority asks for a priority until the answer parses, retrying on
// invalid input. A blank line or EOF means no priority.
func promptPriority(r io.Reader, w io.Writer) (journal.Priority, error) {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "Priority (low/medium/high, blank for none): ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return journal.PriorityNone, fmt.Errorf("reading priority: %w", err)
			}
			fmt.Fprintln(w)
			return journal.PriorityNone, nil
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			return journal.PriorityNone, nil
		}
		priority, err := journal.ParsePriority(answer)
		if err != nil {
			fmt.Fprintln(w, "Please enter low, medium, or high.")
			continue
		}
		return priority, nil
	}
}

// promptCategory asks once for an optional category label.
func promptCategory(r io.Reader, w io.Writer) string {
	fmt.Fprint(w, "Category (blank for none): ")
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		fmt.Fprintln(w)
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// doneCommand removes the task at the given 1-based position.
func doneCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("journal done", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) != 1 {
		return &journal.InvalidInputError{Reason: "done requires exactly one task position"}
	}
	position, err := strconv.Atoi(remaining[0])
	if err != nil {
		return &journal.InvalidInputError{Reason: fmt.Sprintf("position must be a number, got %q", remaining[0])}
	}

	store := journal.NewStore(cfg.JournalFile)
	task, err := store.Complete(position)
	if err != nil {
		return err
	}

	logger.Debug("task completed", "id", task.ID, "position", position)
	fmt.Printf("Completed task: %s\n", task.Text)
	return nil
}

// listCommand prints the journal as a table.
func listCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("journal list", flag.ContinueOnError)
	category := fs.String("category", "", "Show only tasks with this category")
	sortFlag := fs.String("sort", cfg.SortOrder, "Sort order (asc|desc)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if remaining := fs.Args(); len(remaining) > 0 {
		return fmt.Errorf("unexpected arguments: %v", remaining)
	}

	order, err := journal.ParseSortOrder(*sortFlag)
	if err != nil {
		return err
	}

	store := journal.NewStore(cfg.JournalFile)
	tasks, err := store.List(*category, order)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("Task list is empty!")
		return nil
	}

	printTaskTable(os.Stdout, tasks, true)
	return nil
}

// searchCommand prints tasks whose text contains the keyword.
func searchCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("journal search", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	keyword := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(keyword) == "" {
		return &journal.InvalidInputError{Reason: "search requires a keyword"}
	}

	store := journal.NewStore(cfg.JournalFile)
	matches, err := store.Search(keyword)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Printf("No tasks found with the keyword '%s'.\n", keyword)
		return nil
	}

	printTaskTable(os.Stdout, matches, false)
	return nil
}

// tuiCommand launches the interactive journal browser.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("journal tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if remaining := fs.Args(); len(remaining) > 0 {
		return fmt.Errorf("unexpected arguments: %v", remaining)
	}

	return ui.RunTUI(ctx, journal.NewStore(cfg.JournalFile))
}

// doctorCommand checks the journal file, its contents, and the schema.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("journal doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if remaining := fs.Args(); len(remaining) > 0 {
		return fmt.Errorf("unexpected arguments: %v", remaining)
	}

	fmt.Println("Journal Doctor")
	fmt.Println("==============")
	fmt.Println()

	allOK := true

	fmt.Printf("Journal file: %s\n", cfg.JournalFile)
	info, err := os.Stat(cfg.JournalFile)
	switch {
	case os.IsNotExist(err):
		fmt.Println("  ⚠️  Not found (will be created on first add)")
	case err != nil:
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Println("  ❌ Error: path is a directory")
		allOK = false
	default:
		fmt.Println("  ✅ OK")
		tasks, loadErr := journal.NewStore(cfg.JournalFile).Load()
		if loadErr != nil {
			fmt.Printf("  ❌ Load error: %v\n", loadErr)
			allOK = false
		} else {
			result := journal.Validate(tasks, journal.ValidationOptions{SchemaPath: cfg.SchemaFile})
			for _, w := range result.Warnings {
				fmt.Printf("  ⚠️  %s\n", w)
			}
			if result.Valid {
				fmt.Println("  ✅ Valid")
			} else {
				fmt.Println("  ❌ Validation failed:")
				for _, e := range result.Errors {
					fmt.Printf("     - %v\n", e)
				}
				allOK = false
			}
			if *verbose {
				fmt.Printf("  Tasks: %d\n", len(tasks))
				for i, t := range tasks {
					fmt.Printf("    %d: %s\n", i+1, t.Text)
				}
			}
		}
	}
	fmt.Println()

	if cfg.SchemaFile != "" {
		fmt.Printf("Schema file: %s\n", cfg.SchemaFile)
		if info, err := os.Stat(cfg.SchemaFile); err != nil {
			if os.IsNotExist(err) {
				fmt.Println("  ⚠️  Not found (falling back to minimal checks)")
			} else {
				fmt.Printf("  ❌ Error: %v\n", err)
				allOK = false
			}
		} else if info.IsDir() {
			fmt.Println("  ❌ Error: path is a directory")
			allOK = false
		} else {
			fmt.Println("  ✅ OK")
		}
		fmt.Println()
	}

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("journal version %s\n", Version)
	return nil
}

// printTaskTable renders tasks as a fixed-width table. When numbered, each
// row carries its 1-based display position, which done accepts for an
// unfiltered ascending list.
func printTaskTable(w io.Writer, tasks []journal.Task, numbered bool) {
	if numbered {
		fmt.Fprintf(w, "%-4s ", "#")
	}
	fmt.Fprintf(w, "%-5s %-40s %-17s %-12s %-8s %s\n",
		"ID", "Task", "Created At", "Due Date", "Priority", "Category")

	for i, task := range tasks {
		if numbered {
			fmt.Fprintf(w, "%-4d ", i+1)
		}
		fmt.Fprintf(w, "%-5d %-40s %-17s %-12s %-8s %s\n",
			task.ID,
			task.Text,
			task.CreatedAt.Time().Local().Format("2006-01-02 15:04"),
			formatDueDate(task.DueDate),
			formatPriority(task.Priority),
			formatCategory(task.Category),
		)
	}
}

func formatDueDate(due *journal.UnixTime) string {
	if due == nil {
		return "-"
	}
	return due.Time().Format("2006-01-02")
}

func formatPriority(p journal.Priority) string {
	if p == journal.PriorityNone {
		return "-"
	}
	return string(p)
}

func formatCategory(c *string) string {
	if c == nil {
		return "-"
	}
	return *c
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Journal - A command line task journal")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  journal [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <text>      Add a task to the journal")
	fmt.Fprintln(w, "  done <position> Complete the task at the given position")
	fmt.Fprintln(w, "  list            List tasks (default command)")
	fmt.Fprintln(w, "  search <word>   Find tasks containing a keyword")
	fmt.Fprintln(w, "  tui             Launch the interactive browser")
	fmt.Fprintln(w, "  doctor          Check the journal file and schema")
	fmt.Fprintln(w, "  version         Show version information")
	fmt.Fprintln(w, "  help            Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options (use with 'add' command):")
	fmt.Fprintln(w, "  -due string")
	fmt.Fprintln(w, "        Due date (YYYY-MM-DD)")
	fmt.Fprintln(w, "  -priority string")
	fmt.Fprintln(w, "        Priority (low|medium|high)")
	fmt.Fprintln(w, "  -category string")
	fmt.Fprintln(w, "        Category label")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List Options (use with 'list' command):")
	fmt.Fprintln(w, "  -category string")
	fmt.Fprintln(w, "        Show only tasks with this category")
	fmt.Fprintln(w, "  -sort string")
	fmt.Fprintln(w, "        Sort order (asc|desc)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options (use with 'doctor' command):")
	fmt.Fprintln(w, "  -v    Verbose output")
}
