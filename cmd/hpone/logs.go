package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ariafatah0711/HPone/internal/shell/docker"
)

func newLogsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logs <tool>",
		Short: "Interactive logs viewer for containers and mounted data",
		Args:  requireToolArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireDocker(cmd.Context()); err != nil {
				return err
			}
			if err := a.showLogs(cmd.Context(), args[0]); err != nil {
				return fail("Failed to show logs for '%s': %s", args[0], describe(err))
			}
			return nil
		},
	}
}

func (a *app) showLogs(ctx context.Context, id string) error {
	dirID := a.ws.ResolveDirID(id)

	// Without a terminal there is no menu to drive, so print recent
	// container logs and leave.
	if !interactiveTerminal() {
		return a.dumpContainerLogs(ctx, id, dirID)
	}

	err := a.browseLogs(ctx, id, dirID)
	if errors.Is(err, terminal.InterruptErr) {
		return nil
	}
	return err
}

// browseLogs runs the top-level viewer menu: container logs when the
// tool is running, plus one browser entry per mounted data directory.
func (a *app) browseLogs(ctx context.Context, id, dirID string) error {
	const (
		optRecent     = "Recent logs"
		optFollow     = "Follow live logs"
		optNotRunning = "Container not running"
	)

	for {
		mounts := a.dataMounts(dirID)
		running := a.compose.IsRunning(ctx, a.ws.Dir(dirID))

		var options []string
		if running {
			options = append(options, optRecent, optFollow)
		} else {
			options = append(options, optNotRunning)
		}

		labels := make(map[string]dataMount, len(mounts))
		for _, m := range mounts {
			label := fmt.Sprintf("Browse %s (%s)", m.DisplayName, mountLabel(m.LocalPath))
			labels[label] = m
			options = append(options, label)
		}

		if !running && len(mounts) == 0 {
			warnf("No log sources available for %s", id)
			fmt.Printf("       Make sure the tool is running: hpone up %s\n", id)
			return nil
		}

		choice, err := askSelect(fmt.Sprintf("Logs for %s:", id), options)
		if err != nil {
			return err
		}

		switch choice {
		case optRecent:
			if err := a.dumpContainerLogs(ctx, id, dirID); err != nil {
				return err
			}
		case optFollow:
			if err := a.followContainerLogs(ctx, id, dirID); err != nil {
				return err
			}
		case optNotRunning:
			warnf("Container '%s' is not running", id)
			fmt.Printf("       Start it with: hpone up %s\n", id)
		default:
			m, ok := labels[choice]
			if !ok {
				continue
			}
			if _, err := os.Stat(m.LocalPath); err != nil {
				errorf("Directory not found or inaccessible")
				continue
			}
			toMain, err := browseDirectory(m.LocalPath, id)
			if err != nil {
				return err
			}
			if !toMain {
				return nil
			}
		}
	}
}

// dumpContainerLogs prints the last 30 container log lines between
// separator rules.
func (a *app) dumpContainerLogs(ctx context.Context, id, dirID string) error {
	if !a.compose.IsRunning(ctx, a.ws.Dir(dirID)) {
		warnf("Container '%s' is not running", id)
		return nil
	}
	engine, err := a.engine()
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Printf("Recent logs for %s\n", id)
	fmt.Println(strings.Repeat("=", 60))
	if err := engine.StreamLogs(ctx, dirID, docker.LogOptions{Tail: "30"}, os.Stdout); err != nil {
		return err
	}
	fmt.Println(strings.Repeat("=", 60))
	return nil
}

// followContainerLogs streams container logs until Ctrl+C.
func (a *app) followContainerLogs(ctx context.Context, id, dirID string) error {
	if !a.compose.IsRunning(ctx, a.ws.Dir(dirID)) {
		warnf("Container '%s' is not running", id)
		return nil
	}
	engine, err := a.engine()
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Printf("Following logs for %s (Ctrl+C to stop)\n", id)
	fmt.Println(strings.Repeat("=", 60))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	err = engine.StreamLogs(ctx, dirID, docker.LogOptions{Follow: true, Tail: "20"}, os.Stdout)
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		fmt.Printf("\n%s Stopped following logs\n", okPrefix())
		return nil
	}
	return err
}

// =============================================================================
// Mounted Data Discovery
// =============================================================================

// dataMount is one host directory a tool mounts into its container.
type dataMount struct {
	LocalPath     string
	ContainerPath string
	DisplayName   string
}

// dataMounts lists the host directories referenced by _VOL*_SRC
// variables in a tool's generated .env. Only existing directories
// count; single-file mounts are skipped.
func (a *app) dataMounts(dirID string) []dataMount {
	env, err := godotenv.Read(a.ws.EnvPath(dirID))
	if err != nil {
		return nil
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mounts []dataMount
	for _, key := range keys {
		if !strings.Contains(key, "_VOL") || !strings.HasSuffix(key, "_SRC") {
			continue
		}
		src := env[key]
		info, err := os.Stat(src)
		if err != nil || !info.IsDir() {
			continue
		}

		dst := env[strings.TrimSuffix(key, "_SRC")+"_DST"]
		if dst == "" {
			dst = "/opt/" + dirID + "/" + filepath.Base(src)
		}
		name := filepath.Base(src)
		if name == "" || name == "." || name == string(filepath.Separator) {
			name = src
		}
		mounts = append(mounts, dataMount{LocalPath: src, ContainerPath: dst, DisplayName: name})
	}
	return mounts
}

// mountLabel summarizes what browsing a mount will show.
func mountLabel(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsPermission(err) {
			return "access denied"
		}
		return "not found"
	}

	var files, nonEmpty int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files++
		if info, err := e.Info(); err == nil && info.Size() > 0 {
			nonEmpty++
		}
	}
	switch {
	case nonEmpty > 0:
		return fmt.Sprintf("%d files", nonEmpty)
	case files > 0:
		return fmt.Sprintf("%d empty files", files)
	default:
		return "empty"
	}
}

// =============================================================================
// Directory Browser
// =============================================================================

// browseDirectory walks a mounted data directory with one menu per
// level. The returned flag tells the caller whether to reshow the main
// menu (true) or leave the viewer entirely (false).
func browseDirectory(dir, toolName string) (bool, error) {
	return browseLevel(dir, dir, toolName, true)
}

func browseLevel(root, current, toolName string, isRoot bool) (bool, error) {
	entries, err := os.ReadDir(current)
	if err != nil {
		if os.IsPermission(err) {
			errorf("Permission denied accessing %s", current)
		} else {
			errorf("Directory %s does not exist", current)
		}
		return false, nil
	}

	var dirs, files []os.DirEntry
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}
	sortEntries(dirs)
	sortEntries(files)

	back := "Back to main menu"
	if !isRoot {
		back = "Parent directory"
	}
	options := []string{back}

	dirLabels := make(map[string]string, len(dirs))
	for _, d := range dirs {
		label := d.Name() + "/"
		dirLabels[label] = d.Name()
		options = append(options, label)
	}

	// Empty files are hidden; there is nothing to view in them.
	fileLabels := make(map[string]string, len(files))
	totalFiles, emptyFiles := 0, 0
	for _, f := range files {
		totalFiles++
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.Size() == 0 {
			emptyFiles++
			continue
		}
		label := fmt.Sprintf("%s (%s)", f.Name(), humanSize(info.Size()))
		fileLabels[label] = f.Name()
		options = append(options, label)
	}

	if len(options) == 1 {
		if totalFiles == 0 {
			fmt.Println("Directory is empty")
		} else {
			fmt.Printf("Directory contains %d empty file(s) - no viewable content\n", emptyFiles)
		}
		return isRoot, nil
	}

	display := toolName + "/data"
	if rel, err := filepath.Rel(root, current); err == nil && rel != "." {
		display = toolName + "/data/" + filepath.ToSlash(rel)
	}

	for {
		choice, err := askSelect(display, options)
		if err != nil {
			return false, err
		}
		switch {
		case choice == back:
			return isRoot, nil
		case dirLabels[choice] != "":
			toMain, err := browseLevel(root, filepath.Join(current, dirLabels[choice]), toolName, false)
			if err != nil {
				return false, err
			}
			if toMain {
				return true, nil
			}
		case fileLabels[choice] != "":
			if err := viewFile(filepath.Join(current, fileLabels[choice])); err != nil {
				return false, err
			}
		}
	}
}

// =============================================================================
// File Viewer
// =============================================================================

func viewFile(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		errorf("File %s does not exist", filePath)
		return nil
	}
	if !info.Mode().IsRegular() {
		errorf("%s is not a file", filePath)
		return nil
	}

	size := info.Size()
	sizeMB := float64(size) / (1 << 20)

	const (
		optView   = "View entire file"
		optSearch = "Search in file"
		optBack   = "Back"
	)
	title := fmt.Sprintf("%s (%.2f MB)", filepath.Base(filePath), sizeMB)

	for {
		action, err := askSelect(title, []string{optView, optSearch, optBack})
		if err != nil {
			return err
		}

		switch action {
		case optBack:
			return nil

		case optView:
			if size == 0 {
				fmt.Println("File is empty")
				return nil
			}
			if sizeMB > 10 {
				proceed, err := askConfirm(fmt.Sprintf("File is %.1fMB. Continue?", sizeMB))
				if err != nil {
					return err
				}
				if !proceed {
					continue
				}
			}
			if err := printFile(filePath); err != nil {
				errorf("Error: %s", describe(err))
				continue
			}
			return nil

		case optSearch:
			if size == 0 {
				fmt.Println("Cannot search in empty file")
				continue
			}
			term, err := askText("Search term:")
			if err != nil {
				if errors.Is(err, terminal.InterruptErr) {
					fmt.Printf("\n%s Stopped\n", okPrefix())
					continue
				}
				return err
			}
			if term == "" {
				continue
			}
			if err := searchFile(filePath, term); err != nil {
				errorf("Error: %s", describe(err))
			}
		}
	}
}

// printFile dumps a file between separator rules, collapsing blank
// content into a placeholder.
func printFile(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	fmt.Println("Full content:")
	fmt.Println(strings.Repeat("=", 50))
	text := strings.TrimRight(string(content), " \t\n\r")
	if strings.TrimSpace(text) == "" {
		fmt.Println("(File is empty or contains only whitespace)")
	} else {
		fmt.Println(text)
	}
	fmt.Println(strings.Repeat("=", 50))
	return nil
}

// searchFile prints matching lines with their line numbers.
func searchFile(filePath, term string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Printf("Results for '%s':\n", term)
	fmt.Println(strings.Repeat("=", 50))

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo, matches := 0, 0
	for scanner.Scan() {
		lineNo++
		if strings.Contains(scanner.Text(), term) {
			fmt.Printf("%d:%s\n", lineNo, scanner.Text())
			matches++
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if matches == 0 {
		fmt.Printf("No matches found for '%s'\n", term)
	}
	fmt.Println(strings.Repeat("=", 50))
	return nil
}

func sortEntries(entries []os.DirEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})
}

// humanSize renders byte counts the way the file menu shows them.
func humanSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%dB", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1fKB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1fMB", float64(n)/(1024*1024))
	}
}
