package file

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/jsphweid/parle/config"
	"github.com/jsphweid/parle/constants"
	"github.com/jsphweid/parle/util"
)

// Location is either a local path or an object in S3 (s3://bucket/key).
type Location struct {
	Path   string
	Bucket string
	Key    string
}

func (l Location) IsS3() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.IsS3() {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Path
}

func ParseLocation(s string) (Location, error) {
	if !strings.HasPrefix(s, "s3://") {
		if s == "" {
			return Location{}, fmt.Errorf("empty path")
		}
		return Location{Path: s}, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("parsing %s: %w", s, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Location{}, fmt.Errorf("s3 location %q needs both bucket and key", s)
	}
	return Location{Bucket: u.Host, Key: key}, nil
}

// CompressedName is the default output for compressing in.
func CompressedName(in string) string {
	return in + constants.Extension
}

// DecompressedName strips the container extension, or appends ".out" when
// there is none to strip.
func DecompressedName(in string) string {
	if filepath.Base(in) != constants.Extension && strings.HasSuffix(in, constants.Extension) {
		return strings.TrimSuffix(in, constants.Extension)
	}
	return in + ".out"
}

// Store reads and writes whole files at local or S3 locations. The S3
// session is created on first use.
type Store struct {
	cfg config.S3Config

	once sync.Once
	sess *session.Session
	err  error
}

func NewStore(cfg config.S3Config) *Store {
	return &Store{cfg: cfg}
}

func (s *Store) session() (*session.Session, error) {
	s.once.Do(func() {
		awsCfg := &aws.Config{Region: aws.String(s.cfg.Region)}
		if s.cfg.Endpoint != "" {
			awsCfg.Endpoint = aws.String(s.cfg.Endpoint)
			awsCfg.S3ForcePathStyle = aws.Bool(true)
		}
		s.sess, s.err = session.NewSession(awsCfg)
		if s.err != nil {
			s.err = fmt.Errorf("could not create S3 session: %w", s.err)
		}
	})
	return s.sess, s.err
}

func (s *Store) Read(ctx context.Context, loc string) ([]byte, error) {
	l, err := ParseLocation(loc)
	if err != nil {
		return nil, err
	}
	if !l.IsS3() {
		data, err := os.ReadFile(l.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", l.Path, err)
		}
		return data, nil
	}

	sess, err := s.session()
	if err != nil {
		return nil, err
	}
	buf := aws.NewWriteAtBuffer(nil)
	_, err = s3manager.NewDownloader(sess).DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(l.Bucket),
		Key:    aws.String(l.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", l, err)
	}
	return buf.Bytes(), nil
}

// Write replaces the file at loc. Local writes go through a temp file and a
// rename; S3 puts are already all-or-nothing.
func (s *Store) Write(ctx context.Context, loc string, data []byte) error {
	l, err := ParseLocation(loc)
	if err != nil {
		return err
	}
	if !l.IsS3() {
		if dir := filepath.Dir(l.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
		return util.WriteFileAtomic(l.Path, data, 0644)
	}

	sess, err := s.session()
	if err != nil {
		return err
	}
	_, err = s3manager.NewUploader(sess).UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(l.Bucket),
		Key:    aws.String(l.Key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", l, err)
	}
	return nil
}
