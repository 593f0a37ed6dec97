package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// FSScanner reads migrations from an fs.FS.
type FSScanner struct {
	fsys fs.FS
}

// NewFSScanner returns a scanner over fsys.
func NewFSScanner(fsys fs.FS) *FSScanner {
	return &FSScanner{fsys: fsys}
}

// ScanMigrations returns every migration in dir ordered by numeric version.
// Files without the .sql suffix are ignored.
func (s *FSScanner) ScanMigrations(dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(s.fsys, dir)
	if err != nil {
		return nil, newError("", dir, "read directory", err)
	}

	var migrations []Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		m, err := s.parse(path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		n, _ := strconv.Atoi(m.Version)
		if other, ok := seen[n]; ok {
			return nil, newError(m.Version, m.FilePath, "check duplicates",
				fmt.Errorf("%w: also defined by %s", ErrDuplicateVersion, other))
		}
		seen[n] = m.FilePath
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return versionNumber(migrations[i].Version) < versionNumber(migrations[j].Version)
	})
	return migrations, nil
}

func (s *FSScanner) parse(filePath string) (Migration, error) {
	name := path.Base(filePath)
	matches := fileNamePattern.FindStringSubmatch(name)
	if matches == nil {
		return Migration{}, newError("", filePath, "validate filename",
			fmt.Errorf("%w: %q does not match {version}_{description}.sql", ErrInvalidMigrationFile, name))
	}
	version := matches[1]

	content, err := fs.ReadFile(s.fsys, filePath)
	if err != nil {
		return Migration{}, newError(version, filePath, "read file", err)
	}
	sqlText := string(content)
	if len(splitStatements(sqlText)) == 0 {
		return Migration{}, newError(version, filePath, "validate content",
			fmt.Errorf("%w: no SQL statements", ErrInvalidMigrationFile))
	}

	sum := sha256.Sum256(content)
	return Migration{
		Version:     version,
		Description: descriptionOf(sqlText, matches[2]),
		SQL:         sqlText,
		FilePath:    filePath,
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}

// descriptionOf prefers a leading "-- Description:" comment over the file name.
func descriptionOf(sqlText, fromName string) string {
	for _, line := range strings.Split(sqlText, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "--") {
			break
		}
		body := strings.TrimSpace(strings.TrimPrefix(line, "--"))
		if rest, ok := strings.CutPrefix(body, "Description:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return strings.ReplaceAll(fromName, "_", " ")
}

// splitStatements splits on semicolons and drops comment-only lines.
func splitStatements(sqlText string) []string {
	var statements []string
	for _, raw := range strings.Split(sqlText, ";") {
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}

func versionNumber(version string) int {
	n, err := strconv.Atoi(version)
	if err != nil {
		return -1
	}
	return n
}
