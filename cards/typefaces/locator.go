package typefaces

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/flopp/go-findfont"
)

// Locator turns a font file name into a readable path
type Locator interface {
	Locate(file string) (string, error)
}

// DirLocator searches Dirs in order, then the installed system fonts if System is set
type DirLocator struct {
	Dirs   []string
	System bool
}

func (l DirLocator) Locate(file string) (string, error) {
	for _, dir := range l.Dirs {
		p := filepath.Join(dir, file)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	if l.System {
		return findfont.Find(file)
	}
	return "", errors.New("font file not found")
}
