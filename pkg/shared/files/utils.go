package files

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves paths that include a tilde (~) to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}

// ValidatePath checks if the given path is a valid file path for reading.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path stat error: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path %q is a directory, not a file", path)
	}
	if info.Mode()&os.ModeType != 0 {
		return fmt.Errorf("path %q is not a regular file", path)
	}
	return nil
}

// CreateFolderIfNotExists checks if a folder exists, and if not, creates it.
func CreateFolderIfNotExists(folder string) error {
	if _, err := os.Stat(folder); os.IsNotExist(err) {
		if err := os.MkdirAll(folder, os.ModePerm); err != nil {
			return fmt.Errorf("unable to create folder %q: %w", folder, err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to check folder %q: %w", folder, err)
	}
	return nil
}

// ReadLines reads a newline-delimited list file, skipping blank lines.
// Surrounding whitespace on each line is trimmed.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open list file %q: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list file %q: %w", path, err)
	}
	return lines, nil
}

// AppendLine appends a single line to the given file, creating it if needed.
func AppendLine(path, line string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file %q for append: %w", path, err)
	}
	if _, err := fmt.Fprintln(file, line); err != nil {
		file.Close()
		return fmt.Errorf("failed to append to file %q: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %q: %w", path, err)
	}
	return nil
}

// WriteJSONFile writes JSON data to the specified file, replacing any previous
// content. Buffered data is flushed and the file closed before returning, so a
// write error cannot hide behind a deferred flush.
func WriteJSONFile(outputFile string, data []byte) error {
	file, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed creating file: %w", err)
	}

	datawriter := bufio.NewWriter(file)
	if _, err := datawriter.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("error writing data to file %q: %w", outputFile, err)
	}
	if err := datawriter.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("error flushing data to file %q: %w", outputFile, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing file %q: %w", outputFile, err)
	}
	return nil
}
