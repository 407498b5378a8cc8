package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/inspector/pkg/validation"
)

// PostgreSQL SQLSTATE codes translated by MapError.
const (
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

// Errors names the domain errors a repository maps store failures onto.
type Errors struct {
	NotFound  error
	Duplicate error
}

// MapError translates database errors to domain errors.
// sql.ErrNoRows maps to NotFound and unique violations to Duplicate.
// Check, not-null, foreign-key and invalid-text violations become a
// *validation.Error naming the offending column or constraint.
// Other errors are returned unchanged.
func MapError(err error, m Errors) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && m.NotFound != nil {
		return m.NotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		if m.Duplicate != nil {
			return m.Duplicate
		}
	case pgCheckViolation, pgNotNullViolation, pgForeignKeyViolation, pgInvalidText:
		return validation.Field(violationField(pgErr), pgErr.Message)
	}

	return err
}

func violationField(e *pgconn.PgError) string {
	switch {
	case e.ColumnName != "":
		return e.ColumnName
	case e.ConstraintName != "":
		return e.ConstraintName
	default:
		return e.TableName
	}
}
