package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/actor/internal/ports"
	"golang.org/x/crypto/ssh"
)

// SSHConfig describes how to reach the cluster login node.
type SSHConfig struct {
	Host         string
	Port         int
	User         string
	IdentityFile string
	Timeout      time.Duration
	// Dir is the remote working directory; commands are run after cd'ing
	// into it. Typically the shared-filesystem path of the run directory.
	Dir string
}

// SSHRunner runs commands on a remote host. Each Run opens its own
// connection; submissions are infrequent and short.
type SSHRunner struct {
	cfg           SSHConfig
	identityFiles []string
}

// NewSSHRunner creates an SSHRunner, filling in defaults for port, user,
// timeout and identity files.
func NewSSHRunner(cfg SSHConfig) *SSHRunner {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.User == "" {
		cfg.User = os.Getenv("USER")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	homeDir, _ := os.UserHomeDir()
	return &SSHRunner{
		cfg: cfg,
		identityFiles: []string{
			filepath.Join(homeDir, ".ssh", "id_ed25519"),
			filepath.Join(homeDir, ".ssh", "id_rsa"),
		},
	}
}

// Run executes command with args on the remote host.
func (r *SSHRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	client, err := r.connect(ctx)
	if err != nil {
		return ports.CommandResult{}, err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return ports.CommandResult{}, fmt.Errorf("failed to create session: %w", err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	line := RemoteCommandLine(r.cfg.Dir, command, args...)

	done := make(chan error, 1)
	go func() {
		done <- session.Run(line)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		return ports.CommandResult{}, ctx.Err()
	case err := <-done:
		result := ports.CommandResult{
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}
		if err != nil {
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) {
				result.ExitCode = exitErr.ExitStatus()
				return result, nil
			}
			return result, err
		}
		return result, nil
	}
}

func (r *SSHRunner) connect(ctx context.Context) (*ssh.Client, error) {
	auth, err := r.authMethods()
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            r.cfg.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // login node on the cluster network
		Timeout:         r.cfg.Timeout,
	}

	addr := net.JoinHostPort(r.cfg.Host, fmt.Sprint(r.cfg.Port))
	dialer := &net.Dialer{Timeout: config.Timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, config)
	if err != nil {
		_ = netConn.Close()
		return nil, fmt.Errorf("SSH handshake failed: %w", err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

func (r *SSHRunner) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if r.cfg.IdentityFile != "" {
		signer, err := loadPrivateKey(r.cfg.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load identity file %s: %w", r.cfg.IdentityFile, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	for _, path := range r.identityFiles {
		if signer, err := loadPrivateKey(path); err == nil {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no authentication methods available")
	}
	return methods, nil
}

func loadPrivateKey(path string) (ssh.Signer, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		path = filepath.Join(homeDir, path[2:])
	}

	key, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(key)
}

// RemoteCommandLine joins command and args into one shell line, quoting
// every word, prefixed with a cd into dir when dir is set.
func RemoteCommandLine(dir, command string, args ...string) string {
	words := make([]string, 0, len(args)+1)
	words = append(words, shellQuote(command))
	for _, a := range args {
		words = append(words, shellQuote(a))
	}
	line := strings.Join(words, " ")
	if dir != "" {
		line = "cd " + shellQuote(dir) + " && " + line
	}
	return line
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return !(r == '-' || r == '_' || r == '.' || r == '/' || r == '@' || r == ':' || r == '=' || r == ',' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Ensure SSHRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*SSHRunner)(nil)
