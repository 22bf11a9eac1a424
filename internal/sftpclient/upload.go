// Package sftpclient publishes export files to an SFTP drop folder.
package sftpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

var ErrMissingCredentials = errors.New("sftp: missing host, user or password")

type Config struct {
	Host      string
	Port      int
	User      string
	Pass      string
	RemoteDir string
	// KnownHosts is the known_hosts file used to verify the server key.
	KnownHosts            string
	InsecureIgnoreHostKey bool
	Timeout               time.Duration
	Logger                *zap.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}

func hostKeyCallback(cfg Config) (ssh.HostKeyCallback, error) {
	if cfg.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if cfg.KnownHosts == "" {
		return nil, errors.New("sftp: no known_hosts file configured")
	}
	cb, err := knownhosts.New(cfg.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("sftp: load known_hosts: %w", err)
	}
	return cb, nil
}

// UploadFiles copies the local files into cfg.RemoteDir over a single
// connection, keeping their base names.
func UploadFiles(ctx context.Context, cfg Config, localPaths ...string) error {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return ErrMissingCredentials
	}
	cfg = cfg.withDefaults()

	cb, err := hostKeyCallback(cfg)
	if err != nil {
		return err
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         cfg.Timeout,
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	dialer := net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("sftp: dial error: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	// ClientConfig.Timeout only covers ssh.Dial, so bound the handshake here.
	if err := conn.SetDeadline(time.Now().Add(cfg.Timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("sftp: set deadline: %w", err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err == nil {
		err = conn.SetDeadline(time.Time{})
	}
	if err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
		}
		return fmt.Errorf("sftp: handshake: %w", err)
	}
	sshClient := ssh.NewClient(c, chans, reqs)
	defer sshClient.Close()

	sftpCli, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("sftp: new client: %w", err)
	}
	defer sftpCli.Close()

	return upload(ctx, sftpCli, cfg, localPaths)
}

func upload(ctx context.Context, cli *sftp.Client, cfg Config, localPaths []string) error {
	if err := cli.MkdirAll(cfg.RemoteDir); err != nil {
		return fmt.Errorf("sftp: mkdir %s: %w", cfg.RemoteDir, err)
	}
	for _, p := range localPaths {
		if err := ctx.Err(); err != nil {
			return err
		}
		remotePath := path.Join(cfg.RemoteDir, filepath.Base(p))
		n, err := copyFile(cli, p, remotePath)
		if err != nil {
			return err
		}
		cfg.Logger.Info("uploaded file",
			zap.String("local", p), zap.String("remote", remotePath), zap.Int64("bytes", n))
	}
	return nil
}

func copyFile(cli *sftp.Client, localPath, remotePath string) (n int64, err error) {
	src, err := os.Open(localPath)
	if err != nil {
		return 0, fmt.Errorf("sftp: open local file: %w", err)
	}
	defer src.Close()

	dst, err := cli.Create(remotePath)
	if err != nil {
		return 0, fmt.Errorf("sftp: create remote file: %w", err)
	}
	defer func() {
		// The last write is only confirmed when the handle closes.
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("sftp: close remote file: %w", cerr)
		}
	}()

	n, err = io.Copy(dst, src)
	if err != nil {
		return n, fmt.Errorf("sftp: upload copy: %w", err)
	}
	return n, nil
}
