package ledger

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"strings"
)

// ctxCheckInterval is how many lines are scanned between cancellation checks.
const ctxCheckInterval = 4096

const maxLineSize = 1 << 20

// ListFiles returns the names of the regular files in the root of fsys whose
// name ends in suffix, skipping any name listed in exclude. Names are sorted.
func ListFiles(fsys fs.FS, suffix string, exclude ...string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger files: %w", err)
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		if _, ok := skip[entry.Name()]; ok {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// ScanFile parses every line of the named file and passes it to fn.
// Blank lines are skipped. Cancellation of ctx is observed between lines.
func ScanFile(ctx context.Context, fsys fs.FS, name string, fn func(Line)) error {
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open ledger file %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		n++
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if line, ok := ParseLine(scanner.Text()); ok {
			fn(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read ledger file %s: %w", name, err)
	}
	return ctx.Err()
}
