// Package collect gathers the attributes declared across configuration
// sources into one set, and watches those sources for changes.
package collect

import (
	"os"

	"github.com/nixdex/nixdex/internal/declread"
	"github.com/nixdex/nixdex/internal/models"
	"github.com/sirupsen/logrus"
)

// Declared unions the attributes assigned to key across the given
// sources. A source that cannot be read or parsed contributes nothing;
// it is skipped with a warning and the remaining sources still count.
func Declared(paths []string, key string) models.DeclaredSet {
	set := models.NewDeclaredSet()
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			skip(path, err)
			continue
		}
		vals, err := declread.ForPath(path).Values(content, key)
		if err != nil {
			skip(path, err)
			continue
		}
		for _, v := range vals {
			set.Add(v)
		}
		logrus.Debugf("Collected %d declarations from %s", len(vals), path)
	}
	return set
}

func skip(path string, err error) {
	logrus.Warnf("Skipping source: %v", &models.IndexError{
		Type:   models.ErrConfigRead,
		Source: path,
		Err:    err,
	})
}
