package scanner

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

var (
	ssPIDRegex  = regexp.MustCompile(`pid=(\d+)`)
	ssProcRegex = regexp.MustCompile(`"([^"]+)"`)
)

func parseLsofOutput(output []byte) []Port {
	var ports []Port
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	// Skip header
	scanner.Scan()

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 9 {
			continue
		}

		// lsof output: COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME [(LISTEN)]
		pid, err := strconv.Atoi(fields[1])
		if err != nil || pid <= 0 {
			continue
		}
		// NAME is at index 8, not the last field (which could be "(LISTEN)")
		address, port, ok := parsePort(fields[8])
		if !ok || port == 0 {
			continue
		}

		key := strconv.Itoa(int(port)) + ":" + strconv.Itoa(pid)
		if seen[key] {
			continue
		}
		seen[key] = true

		ports = append(ports, Port{
			Port:    port,
			PID:     pid,
			Process: unescapeProcessName(fields[0]),
			User:    fields[2],
			Address: address,
		})
	}

	return ports
}

// unescapeProcessName undoes lsof's escaping, e.g. "Code\x20Helper" -> "Code Helper".
func unescapeProcessName(name string) string {
	result := strings.ReplaceAll(name, "\\x20", " ")
	return strings.ReplaceAll(result, "\\x2d", "-")
}

func parseSSOutput(output []byte) []Port {
	var ports []Port
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	// Skip header
	scanner.Scan()

	// ss output: State Recv-Q Send-Q Local Address:Port Peer Address:Port Process
	// Example: LISTEN 0 128 0.0.0.0:22 0.0.0.0:* users:(("sshd",pid=1234,fd=3))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}

		address, port, ok := parsePort(fields[3])
		if !ok || port == 0 {
			continue
		}

		procInfo := fields[5]
		matches := ssPIDRegex.FindStringSubmatch(procInfo)
		if matches == nil {
			continue
		}
		pid, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}
		var process string
		if m := ssProcRegex.FindStringSubmatch(procInfo); m != nil {
			process = m[1]
		}

		key := strconv.Itoa(int(port)) + ":" + strconv.Itoa(pid)
		if seen[key] {
			continue
		}
		seen[key] = true

		ports = append(ports, Port{
			Port:    port,
			PID:     pid,
			Process: process,
			Address: address,
		})
	}

	return ports
}

func parseNetstatOutput(output []byte) []Port {
	var ports []Port
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(output))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, "LISTENING") {
			continue
		}

		// Proto Local Address Foreign Address State PID
		// TCP 0.0.0.0:3000 0.0.0.0:0 LISTENING 1234
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}

		address, port, ok := parsePort(fields[1])
		if !ok || port == 0 {
			continue
		}
		pid, err := strconv.Atoi(fields[4])
		if err != nil || pid <= 0 {
			continue
		}

		key := strconv.Itoa(int(port)) + ":" + strconv.Itoa(pid)
		if seen[key] {
			continue
		}
		seen[key] = true

		ports = append(ports, Port{
			Port:    port,
			PID:     pid,
			Address: address,
		})
	}

	return ports
}

// parseTasklistOutput maps pids to image names from `tasklist /FO CSV /NH`.
func parseTasklistOutput(output []byte) map[int]string {
	pidToName := make(map[int]string)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		// CSV format: "process.exe","1234","Console","1","10,000 K"
		fields := strings.Split(scanner.Text(), ",")
		if len(fields) < 2 {
			continue
		}
		name := strings.Trim(fields[0], "\"")
		pid, err := strconv.Atoi(strings.Trim(fields[1], "\""))
		if err != nil {
			continue
		}
		pidToName[pid] = name
	}
	return pidToName
}
