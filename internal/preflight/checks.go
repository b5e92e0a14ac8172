package preflight

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckPlanDirectory verifies a plan folder and reports how many student
// folders it holds. A missing plan folder is reported but optional.
func CheckPlanDirectory(name, path string) Result {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s (not found, no students)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	students := 0
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			students++
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d students)", path, students)}
}

// CheckQuestionBank verifies that the question bank is a JSON list of strings.
// It only runs when paid plan questions are enabled, so a missing bank blocks.
func CheckQuestionBank(path string) Result {
	const name = "Question bank"

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not found; paid plan sheets need it)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	var bank []string
	if err := json.Unmarshal(data, &bank); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a JSON list of strings: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d questions)", path, len(bank))}
}

// CheckFont warns when no sheet font is configured and otherwise verifies
// that the font file can be read.
func CheckFont(path string) Result {
	const name = "Font"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Optional: true, Detail: "not configured; non-ASCII names and chapter labels render as boxes (set render.font_path)"}
	}
	return CheckReadableFile(name, path)
}

// CheckReadableFile verifies that a configured file can be read.
func CheckReadableFile(name, path string) Result {
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}
