package storage

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hirochachacha/go-smb2"
)

// smbResolution is the default verification granularity for SMB shares.
// The protocol stores FILETIME (100ns ticks), but many NAS servers
// truncate to whole seconds when setting times, so verification compares
// at one second unless the config says otherwise.
const smbResolution = time.Second

// SMBConfig holds the parameters for one SMB session
type SMBConfig struct {
	Host     string
	Port     int
	Share    string
	Username string
	Password string
	Domain   string

	// BasePath is prepended to every path passed to the backend
	BasePath string

	// DialTimeout bounds the TCP connect and SMB negotiation
	DialTimeout time.Duration

	// Resolution overrides the verification granularity (0 = 1s default)
	Resolution time.Duration
}

// SMB is a backend for one mounted SMB share over one session
type SMB struct {
	conn       net.Conn
	session    *smb2.Session
	share      *smb2.Share
	basePath   string
	resolution time.Duration
}

// DialSMB opens a TCP connection, negotiates an SMB session with NTLM
// credentials and mounts the share
func DialSMB(ctx context.Context, cfg SMBConfig) (*SMB, error) {
	port := cfg.Port
	if port == 0 {
		port = 445
	}
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, port)
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, NewError(KindConnectivity, "dial", addr, err)
	}

	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     cfg.Username,
			Password: cfg.Password,
			Domain:   cfg.Domain,
		},
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	session, err := d.DialContext(dialCtx, conn)
	if err != nil {
		conn.Close()
		return nil, wrap("negotiate", addr, err)
	}

	share, err := session.Mount(cfg.Share)
	if err != nil {
		session.Logoff()
		conn.Close()
		return nil, wrap("mount", cfg.Share, err)
	}

	resolution := cfg.Resolution
	if resolution == 0 {
		resolution = smbResolution
	}

	return &SMB{
		conn:       conn,
		session:    session,
		share:      share,
		basePath:   strings.Trim(cfg.BasePath, "/"),
		resolution: resolution,
	}, nil
}

// remotePath joins the base path and converts to the backslash form the
// protocol expects
func (s *SMB) remotePath(path string) string {
	p := strings.Trim(path, "/")
	if s.basePath != "" {
		if p == "" {
			p = s.basePath
		} else {
			p = s.basePath + "/" + p
		}
	}
	return strings.ReplaceAll(p, "/", `\`)
}

// fs returns the share bound to ctx so blocked calls unwind on cancel
func (s *SMB) fs(ctx context.Context) *smb2.Share {
	return s.share.WithContext(ctx)
}

// List returns all files under path recursively
func (s *SMB) List(ctx context.Context, path string) ([]FileInfo, error) {
	var files []FileInfo

	var walk func(rel string) error
	walk = func(rel string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name := s.remotePath(rel)
		if name == "" {
			name = "."
		}
		entries, err := s.fs(ctx).ReadDir(name)
		if err != nil {
			return err
		}

		for _, info := range entries {
			childRel := info.Name()
			if rel != "" {
				childRel = rel + "/" + info.Name()
			}

			files = append(files, FileInfo{
				Path:         childRel,
				RelativePath: childRel,
				Size:         info.Size(),
				ModTime:      info.ModTime(),
				IsDir:        info.IsDir(),
			})

			if info.IsDir() {
				if err := walk(childRel); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(strings.Trim(path, "/")); err != nil {
		return nil, wrap("list", path, err)
	}
	return files, nil
}

// Read opens a file for reading
func (s *SMB) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := s.fs(ctx).Open(s.remotePath(path))
	if err != nil {
		return nil, wrap("read", path, err)
	}
	return f, nil
}

// Stat returns file metadata
func (s *SMB) Stat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := s.fs(ctx).Stat(s.remotePath(path))
	if err != nil {
		return nil, wrap("stat", path, err)
	}

	return &FileInfo{
		Path:         path,
		RelativePath: path,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        info.IsDir(),
	}, nil
}

// Timestamps returns the file's modification time, and its creation time
// when the server reports one
func (s *SMB) Timestamps(ctx context.Context, path string) (*Timestamps, error) {
	info, err := s.fs(ctx).Stat(s.remotePath(path))
	if err != nil {
		return nil, wrap("timestamps", path, err)
	}

	ts := &Timestamps{Modified: info.ModTime()}
	if st, ok := info.Sys().(*smb2.FileStat); ok && !st.CreationTime.IsZero() {
		ts.Created = st.CreationTime
		ts.HasCreated = true
	}
	return ts, nil
}

// SetTimestamps applies a new modification time. Creation time cannot be
// written over this client; callers should consult SupportsCreationTime.
func (s *SMB) SetTimestamps(ctx context.Context, path string, ts Timestamps) error {
	if err := s.fs(ctx).Chtimes(s.remotePath(path), ts.Modified, ts.Modified); err != nil {
		return wrap("set timestamps", path, err)
	}
	return nil
}

// Exists checks if a file exists on the share
func (s *SMB) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.fs(ctx).Stat(s.remotePath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, wrap("exists", path, err)
}

// Resolution returns the verification granularity for this share
func (s *SMB) Resolution() time.Duration {
	return s.resolution
}

// SupportsCreationTime reports false: the SMB client exposes Chtimes only
func (s *SMB) SupportsCreationTime() bool {
	return false
}

// Ping verifies the session is still alive by statting the share root
func (s *SMB) Ping(ctx context.Context) error {
	if _, err := s.fs(ctx).Stat("."); err != nil {
		return NewError(KindConnectivity, "ping", ".", err)
	}
	return nil
}

// Close unmounts the share and tears down the session
func (s *SMB) Close() error {
	var firstErr error
	if err := s.share.Umount(); err != nil {
		firstErr = err
	}
	if err := s.session.Logoff(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.conn.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
