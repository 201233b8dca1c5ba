package calibration

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"touch-calibrator/internal/version"
)

const (
	// DefaultFileName is the artifact name inside the store directory.
	DefaultFileName = "calibration"

	appDir = "touch-calibrator"
)

// DefaultDir returns ~/.config/touch-calibrator (or the platform equivalent).
func DefaultDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir)
}

// Store persists a Calibration to a single artifact file. A Store holds no
// open handles; Save and Load may be called from any goroutine, but
// concurrent Saves to one path race on which file wins the final rename.
type Store struct {
	dir  string
	name string
	opts options
}

// NewStore returns a store for dir/name. Empty values select DefaultDir
// and DefaultFileName.
func NewStore(dir, name string, opts ...Option) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	if name == "" {
		name = DefaultFileName
	}
	return &Store{dir: dir, name: name, opts: buildOptions(opts)}
}

// Path returns the artifact location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, s.name)
}

// Exists reports whether an artifact is present.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.Path())
	return err == nil && info.Mode().IsRegular()
}

// Save writes c to the artifact, creating the directory if needed. The
// artifact is replaced atomically: readers see either the old or the new
// content, and a failed write leaves no partial file behind.
func (s *Store) Save(c Calibration) (err error) {
	if !c.IsFinite() {
		return fmt.Errorf("%w: calibration has non-finite coefficients", ErrInvalidInput)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return ioError("create calibration dir", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+s.name+"-*")
	if err != nil {
		return ioError("create temp artifact", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = s.write(tmp, c); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), s.Path()); err != nil {
		return ioError("install artifact", err)
	}
	return nil
}

func (s *Store) write(f *os.File, c Calibration) error {
	defer f.Close()

	w := bufio.NewWriter(f)
	header := "Autogenerated touch-screen calibration coefficients (" + version.String() + ")"
	if err := Encode(w, c, s.opts.precision, header); err != nil {
		return ioError("write artifact", err)
	}
	if err := w.Flush(); err != nil {
		return ioError("write artifact", err)
	}
	if err := f.Chmod(0o644); err != nil {
		return ioError("chmod artifact", err)
	}
	if err := f.Sync(); err != nil {
		return ioError("sync artifact", err)
	}
	if err := f.Close(); err != nil {
		return ioError("close artifact", err)
	}
	return nil
}

// Load reads the artifact. It fails with ErrNotFound when the file does
// not exist and ErrParse when its content is malformed.
func (s *Store) Load() (Calibration, error) {
	f, err := os.Open(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Calibration{}, fmt.Errorf("load %s: %w", s.Path(), ErrNotFound)
		}
		return Calibration{}, ioError("open artifact", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return Calibration{}, fmt.Errorf("load %s: %w", s.Path(), err)
	}
	return c, nil
}

// Remove deletes the artifact, returning the system to uncalibrated.
// Removing a missing artifact is not an error.
func (s *Store) Remove() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioError("remove artifact", err)
	}
	return nil
}
