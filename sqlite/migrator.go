package sqlite

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Edgame2/castiel/kit/platform/errors"
	"go.uber.org/zap"
)

// Migrator applies the embedded migration scripts to a SqlStore, tracking
// progress in the sqlite user_version pragma.
type Migrator struct {
	store *SqlStore
	log   *zap.Logger
}

func NewMigrator(store *SqlStore, log *zap.Logger) *Migrator {
	return &Migrator{
		store: store,
		log:   log,
	}
}

func (m *Migrator) Up(ctx context.Context, source embed.FS) error {
	list, err := source.ReadDir(".")
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return nil
	}

	// sort the list according to the version number to ensure the migrations
	// are applied in the correct order
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})

	current, err := m.store.userVersion()
	if err != nil {
		return err
	}

	final, err := scriptVersion(list[len(list)-1].Name())
	if err != nil {
		return err
	}

	// log this message only if there are migrations to run
	if final > current {
		m.log.Info("Bringing up metadata migrations", zap.Int("migration_count", final-current))
	}

	for _, f := range list {
		n := f.Name()
		v, err := scriptVersion(n)
		if err != nil {
			return err
		}

		if v <= current {
			continue
		}

		m.log.Debug("Executing metadata migration", zap.String("migration_name", n))
		mBytes, err := source.ReadFile(n)
		if err != nil {
			return err
		}

		if err := m.store.execTrans(ctx, string(mBytes)); err != nil {
			return err
		}

		// record progress; PRAGMA does not support parameter binding
		if err := m.store.execTrans(ctx, fmt.Sprintf("PRAGMA user_version=%d", v)); err != nil {
			return err
		}
		current = v
	}

	return nil
}

// scriptVersion extracts the version number as an integer from a file named
// like "0002_migration_name.sql".
func scriptVersion(filename string) (int, error) {
	vString := strings.Split(filename, "_")[0]
	vInt, err := strconv.Atoi(vString)
	if err != nil {
		return 0, &errors.Error{
			Code: errors.EInternal,
			Msg:  fmt.Sprintf("migration script %q has an invalid version number", filename),
			Err:  err,
		}
	}

	return vInt, nil
}
