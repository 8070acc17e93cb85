package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// MaxBodyBytes caps how much of a target page we read and analyze.
	MaxBodyBytes = 2 * 1024 * 1024
	// MaxPolicyBodyBytes caps robots.txt and terms-page reads during the policy check.
	MaxPolicyBodyBytes = 256 * 1024
	// MaxURLLength is the longest target URL accepted before any network I/O.
	MaxURLLength = 2048
	// DefaultFetchTimeout bounds a single page fetch.
	DefaultFetchTimeout = 15 * time.Second
	// DefaultPolicyTimeout bounds each robots.txt/terms probe.
	DefaultPolicyTimeout = 8 * time.Second
	// MaxSubdomainScans caps how many same-apex subdomains one scan will follow.
	MaxSubdomainScans = 10
)

// UserAgent identifies the scanner in outbound requests and is the agent
// string matched against robots.txt User-agent sections.
const UserAgent = "PageRiskBot/1.0"
