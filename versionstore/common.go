package versionstore

import (
	"errors"
)

var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingVersionsFailed = errors.New("querying version records failed")
var ErrScanningDBRowFailed = errors.New("scanning database row failed")
var ErrUnsupportedOperator = errors.New("where expression contains an unsupported operator")
var ErrInvalidOperatorValue = errors.New("where expression value does not fit its operator")
