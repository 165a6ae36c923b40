package container

import (
	"bufio"
	"os"
	"strings"
)

// dockerfileFacts is what the hygiene checks assert on.
type dockerfileFacts struct {
	fromCount   int
	lastUser    string
	healthcheck bool
}

// scanDockerfile extracts the directives the suite cares about. Instruction
// keywords are case-insensitive; a trailing backslash continues a line.
func scanDockerfile(path string) (dockerfileFacts, error) {
	f, err := os.Open(path)
	if err != nil {
		return dockerfileFacts{}, err
	}
	defer f.Close()

	var facts dockerfileFacts
	var continued bool

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		wasContinued := continued
		continued = strings.HasSuffix(line, "\\")
		if wasContinued || line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch strings.ToUpper(fields[0]) {
		case "FROM":
			facts.fromCount++
		case "USER":
			if len(fields) > 1 {
				facts.lastUser = fields[1]
			}
		case "HEALTHCHECK":
			facts.healthcheck = true
		}
	}
	return facts, scanner.Err()
}

// rootUser reports whether a USER directive value resolves to root.
func rootUser(user string) bool {
	name := user
	if i := strings.Index(user, ":"); i >= 0 {
		name = user[:i]
	}
	return name == "root" || name == "0"
}
