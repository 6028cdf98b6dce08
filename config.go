package bytebuffer

import (
	"bufio"
	"os"
	"regexp"
)

// confPath stores path to the bytebuffer configuration file
var confPath string

// config stores the configuration as defined in the current environment
var config map[string]string

// pat stores a valid key-value pattern line
var pat = regexp.MustCompile("^([A-Z0-9_]+)=(.*)$")

// initConfig initializes the config constants
func initConfig() error {
	p, ok := os.LookupEnv("BYTEBUFFER_CONF")
	if !ok {
		p = "/etc/bytebuffer.conf"
	}
	confPath = p

	f, err := os.Open(confPath)
	if err != nil {
		return err
	}
	defer f.Close()

	c, err := parseConfig(f)
	if err != nil {
		return err
	}

	// if we reach at this point, it means we have a valid config
	// that can be read, so we can make the map non-nil
	config = c
	return nil
}

func parseConfig(f *os.File) (map[string]string, error) {
	c := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if matches := pat.FindStringSubmatch(scanner.Text()); matches != nil {
			c[matches[1]] = matches[2]
		}
	}

	return c, scanner.Err()
}

// DefaultAllocator returns the Allocator new buffers use when none is passed,
// as configured by BYTEBUFFER_ALLOCATOR and BYTEBUFFER_MMAP_DIR.
func DefaultAllocator() Allocator {
	switch config["BYTEBUFFER_ALLOCATOR"] {
	case "mmap":
		return &MmapAllocator{Dir: config["BYTEBUFFER_MMAP_DIR"]}
	default:
		return HeapAllocator{}
	}
}
