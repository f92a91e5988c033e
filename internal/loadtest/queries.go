package loadtest

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed queries/*.graphql
var embeddedQueries embed.FS

// QueryTypes lists the bundled workloads from lightest to heaviest.
var QueryTypes = []string{"simple", "medium", "complex", "super-complex"}

func validQueryType(name string) bool {
	for _, q := range QueryTypes {
		if q == name {
			return true
		}
	}
	return false
}

// LoadQuery returns the query text for name with // comments removed. Files
// in dir take precedence over the embedded set when dir is not empty.
func LoadQuery(name, dir string) (string, error) {
	if !validQueryType(name) {
		return "", fmt.Errorf("invalid query type %q, must be one of: %s", name, strings.Join(QueryTypes, ", "))
	}

	var (
		data []byte
		err  error
	)
	if dir != "" {
		data, err = os.ReadFile(filepath.Join(dir, name+".graphql"))
	} else {
		data, err = embeddedQueries.ReadFile("queries/" + name + ".graphql")
	}
	if err != nil {
		return "", fmt.Errorf("reading %s query: %w", name, err)
	}

	return StripComments(string(data)), nil
}

// StripComments drops everything from // to the end of each line, except
// inside string literals, and removes lines left blank.
func StripComments(src string) string {
	var out []string
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimRight(stripLineComment(line), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func stripLineComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '/':
			if !inString && i+1 < len(line) && line[i+1] == '/' {
				return line[:i]
			}
		}
	}
	return line
}
