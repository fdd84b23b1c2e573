// Package database provides SQLite connectivity for Gray Logic ChatOps.
//
// It opens the database with WAL mode and a busy timeout, and applies the
// additive schema migrations embedded by the migrations package. Member,
// kudos and neighborhood repositories sit on top of the *sql.DB it exposes.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
