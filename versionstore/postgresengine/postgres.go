package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/MadMax267/payload/versionstore"
	"github.com/MadMax267/payload/versionstore/postgresengine/internal/adapters"
)

const (
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgResolveEntityFailed    = "failed to resolve entity from database row"
	logMsgResolutionCompleted    = "latest-version resolution completed"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "versionstore operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrCollection            = "collection"
	logAttrStrategy              = "strategy"
	logAttrDocCount              = "doc_count"
	logAttrTotalDocs             = "total_docs"
	logAttrDurationMS            = "duration_ms"
	logActionResolve             = "resolve"
	logActionCount               = "count"
	metricQueryDuration          = "versionstore_query_duration"
	metricQueryErrors            = "versionstore_query_errors"
	metricDocsResolved           = "versionstore_docs_resolved"
	labelStrategy                = "strategy"
	labelCollection              = "collection"
	strategyAggregation          = "aggregation"
	strategyFlag                 = "flag"
	colID                        = "id"
	colParentID                  = "parent_id"
	colPayload                   = "payload"
	colCreatedAt                 = "created_at"
	colUpdatedAt                 = "updated_at"
	colLatest                    = "latest"
	aliasLatest                  = "latest_versions"
	dialectPostgres              = "postgres"
)

type (
	sqlQueryString = string
	queryDuration  = time.Duration
)

// Store resolves, filters, sorts and paginates the current version per
// entity, on top of a Postgres table holding the full version history.
// It leverages a database adapter and supports customizable logging and
// metrics collection. Store is read-only and safe for concurrent use.
type Store struct {
	db               adapters.DBAdapter
	logger           Logger
	metricsCollector MetricsCollector
}

// QueryLatestParams carries everything one resolution needs: the collection
// being resolved, the caller's filter, the access-control outcome for this
// caller, an optional per-call access override, and an optional pagination
// window. A nil Page returns all resolved entities on one page.
type QueryLatestParams struct {
	Collection     versionstore.Collection
	Where          *versionstore.Where
	Access         versionstore.AccessResult
	OverrideAccess bool
	Page           *versionstore.Page
}

type versionResultRow struct {
	parentID  string
	payload   []byte
	createdAt time.Time
	updatedAt time.Time
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, versionstore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolWithReplica creates a new Store using a primary pgx Pool
// and a replica pool used for eventually consistent reads.
func NewStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, versionstore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, versionstore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, versionstore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (Store, error) {
	store := Store{db: db}

	for _, option := range options {
		if err := option(&store); err != nil {
			return Store{}, err
		}
	}

	return store, nil
}

// QueryLatest resolves the current version of every matching entity in the
// collection and returns them as flat entities in the uniform paginated shape.
//
// Which strategy resolves the request is decided purely by the collection's
// TrustLatestFlag; everything else is identical between the two paths.
func (s Store) QueryLatest(ctx context.Context, params QueryLatestParams) (versionstore.Result, error) {
	var empty versionstore.Result

	if validateErr := params.Collection.Validate(); validateErr != nil {
		return empty, validateErr
	}

	if params.Collection.TrustLatestFlag {
		return s.queryLatestByFlag(ctx, params)
	}

	return s.queryLatestByAggregation(ctx, params)
}

// queryLatestByAggregation derives "latest per entity" at query time.
//
// The inner query sorts the full history newest-first and keeps the first
// row per parent (DISTINCT ON); only then does the caller's filter run, over
// the resolved latest rows. Filtering before the grouping would match
// historical versions instead of the current one, so the ordering of those
// steps must not change. Ties on updated_at break deterministically by the
// version row id, newest insert winning.
func (s Store) queryLatestByAggregation(ctx context.Context, params QueryLatestParams) (versionstore.Result, error) {
	var empty versionstore.Result

	rewrittenWhere := params.Where.Rewrite(versionstore.RewriteVersionKey)

	access := params.Access
	if constraint := access.Constraint(); constraint != nil {
		access = versionstore.AllowWhere(constraint.Rewrite(versionstore.RewriteVersionKey))
	}

	versionQuery, accessErr := versionstore.BuildAccessQuery(rewrittenWhere, access, params.OverrideAccess)
	if accessErr != nil {
		return empty, accessErr
	}

	filterExpr, buildErr := whereExpression(versionQuery)
	if buildErr != nil {
		return empty, s.buildQueryFailed(buildErr)
	}

	latestStmt := goqu.Dialect(dialectPostgres).
		From(params.Collection.VersionsTable).
		Select(colParentID, colPayload, colCreatedAt, colUpdatedAt).
		Distinct(colParentID).
		Order(
			goqu.I(colParentID).Asc(),
			goqu.I(colUpdatedAt).Desc(),
			goqu.I(colID).Desc(),
		)

	resolvedStmt := goqu.Dialect(dialectPostgres).
		From(latestStmt.As(aliasLatest)).
		Select(colParentID, colPayload, colCreatedAt, colUpdatedAt)

	if filterExpr != nil {
		resolvedStmt = resolvedStmt.Where(filterExpr)
	}

	return s.executeResolution(ctx, resolvedStmt, params, strategyAggregation)
}

// queryLatestByFlag trusts the persisted latest marker and pushes one
// combined predicate down as a plain find, no grouping needed. Cheaper and
// index-friendly, at the cost of depending on the write path keeping exactly
// one marked record per parent; violations surface as duplicated or missing
// entities and are not corrected here.
func (s Store) queryLatestByFlag(ctx context.Context, params QueryLatestParams) (versionstore.Result, error) {
	var empty versionstore.Result

	combinedWhere := versionstore.And(versionstore.Eq(fieldLatest, true), params.Where)

	versionQuery, accessErr := versionstore.BuildAccessQuery(combinedWhere, params.Access, params.OverrideAccess)
	if accessErr != nil {
		return empty, accessErr
	}

	filterExpr, buildErr := whereExpression(versionQuery)
	if buildErr != nil {
		return empty, s.buildQueryFailed(buildErr)
	}

	findStmt := goqu.Dialect(dialectPostgres).
		From(params.Collection.VersionsTable).
		Select(colParentID, colPayload, colCreatedAt, colUpdatedAt)

	if filterExpr != nil {
		findStmt = findStmt.Where(filterExpr)
	}

	return s.executeResolution(ctx, findStmt, params, strategyFlag)
}

// executeResolution runs the strategy's statement, paginated or not, and
// normalizes every row into the flat entity shape.
func (s Store) executeResolution(
	ctx context.Context,
	stmt *goqu.SelectDataset,
	params QueryLatestParams,
	strategy string,
) (versionstore.Result, error) {

	var empty versionstore.Result

	sortSpec := versionstore.Sort(nil)
	if params.Page != nil {
		sortSpec = params.Page.Sort.Rewrite(versionstore.RewriteVersionKey)
	}

	orderedStmt := stmt.Order(orderedExpressions(sortSpec)...)

	if params.Page == nil {
		docs, queryErr := s.queryEntities(ctx, orderedStmt, params.Collection.Slug, strategy)
		if queryErr != nil {
			return empty, queryErr
		}

		result := versionstore.BuildResult(docs, int64(len(docs)), 0, 1)
		s.logResolution(params.Collection.Slug, strategy, result)

		return result, nil
	}

	pageNumber := params.Page.Number
	if pageNumber == 0 {
		pageNumber = 1
	}

	totalDocs, countErr := s.queryTotalDocs(ctx, stmt, params.Collection.Slug, strategy)
	if countErr != nil {
		return empty, countErr
	}

	if params.Page.Limit > 0 {
		orderedStmt = orderedStmt.
			Limit(params.Page.Limit).
			Offset((pageNumber - 1) * params.Page.Limit)
	}

	docs, queryErr := s.queryEntities(ctx, orderedStmt, params.Collection.Slug, strategy)
	if queryErr != nil {
		return empty, queryErr
	}

	result := versionstore.BuildResult(docs, totalDocs, params.Page.Limit, pageNumber)
	s.logResolution(params.Collection.Slug, strategy, result)

	return result, nil
}

// queryEntities executes the resolution statement and normalizes each raw
// row. Metadata always comes from the wrapper columns; the entity id is the
// parent id.
func (s Store) queryEntities(
	ctx context.Context,
	stmt *goqu.SelectDataset,
	collection string,
	strategy string,
) (versionstore.Entities, error) {

	sqlQuery, toSQLErr := s.toSQL(stmt)
	if toSQLErr != nil {
		return nil, toSQLErr
	}

	rows, duration, queryErr := s.executeQuery(ctx, sqlQuery, logActionResolve)
	if queryErr != nil {
		s.recordError(collection, strategy)
		return nil, queryErr
	}
	defer s.closeRows(rows)

	docs := make(versionstore.Entities, 0)
	row := versionResultRow{}

	for rows.Next() {
		if scanErr := rows.Scan(&row.parentID, &row.payload, &row.createdAt, &row.updatedAt); scanErr != nil {
			if s.logger != nil {
				s.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
			}

			return nil, errors.Join(versionstore.ErrScanningDBRowFailed, scanErr)
		}

		entity, resolveErr := versionstore.ResolveEntity(row.parentID, row.payload, row.createdAt, row.updatedAt)
		if resolveErr != nil {
			if s.logger != nil {
				s.logger.Error(logMsgResolveEntityFailed, logAttrError, resolveErr.Error())
			}

			return nil, resolveErr
		}

		docs = append(docs, entity)
	}

	s.recordDuration(duration, collection, strategy)

	return docs, nil
}

// queryTotalDocs counts the eligible resolved entities for the pagination
// envelope, over the same filtered statement the page query uses.
func (s Store) queryTotalDocs(
	ctx context.Context,
	stmt *goqu.SelectDataset,
	collection string,
	strategy string,
) (int64, error) {

	countStmt := stmt.Select(goqu.COUNT(goqu.Star()))

	sqlQuery, toSQLErr := s.toSQL(countStmt)
	if toSQLErr != nil {
		return 0, toSQLErr
	}

	rows, _, queryErr := s.executeQuery(ctx, sqlQuery, logActionCount)
	if queryErr != nil {
		s.recordError(collection, strategy)
		return 0, queryErr
	}
	defer s.closeRows(rows)

	var totalDocs int64

	if rows.Next() {
		if scanErr := rows.Scan(&totalDocs); scanErr != nil {
			if s.logger != nil {
				s.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
			}

			return 0, errors.Join(versionstore.ErrScanningDBRowFailed, scanErr)
		}
	}

	return totalDocs, nil
}

func (s Store) toSQL(stmt *goqu.SelectDataset) (sqlQueryString, error) {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return "", s.buildQueryFailed(toSQLErr)
	}

	return sqlQuery, nil
}

func (s Store) buildQueryFailed(cause error) error {
	if s.logger != nil {
		s.logger.Error(logMsgBuildSelectQueryFailed, logAttrError, cause.Error())
	}

	return errors.Join(versionstore.ErrBuildingQueryFailed, cause)
}

// executeQuery executes the SQL query and returns rows with timing information.
func (s Store) executeQuery(ctx context.Context, sqlQuery string, action string) (
	adapters.DBRows,
	queryDuration,
	error,
) {

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(sqlQuery, action, duration)

	if queryErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		return nil, duration, errors.Join(versionstore.ErrQueryingVersionsFailed, queryErr)
	}

	return rows, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (s Store) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

func (s Store) logResolution(collection string, strategy string, result versionstore.Result) {
	if s.logger != nil {
		s.logger.Info(
			logMsgOperation+logMsgResolutionCompleted,
			logAttrCollection, collection,
			logAttrStrategy, strategy,
			logAttrDocCount, len(result.Docs),
			logAttrTotalDocs, result.TotalDocs,
		)
	}

	if s.metricsCollector != nil {
		s.metricsCollector.RecordValue(
			metricDocsResolved,
			float64(len(result.Docs)),
			map[string]string{labelCollection: collection, labelStrategy: strategy},
		)
	}
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (s Store) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, s.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

func (s Store) recordDuration(duration time.Duration, collection string, strategy string) {
	if s.metricsCollector != nil {
		s.metricsCollector.RecordDuration(
			metricQueryDuration,
			duration,
			map[string]string{labelCollection: collection, labelStrategy: strategy},
		)
	}
}

func (s Store) recordError(collection string, strategy string) {
	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(
			metricQueryErrors,
			map[string]string{labelCollection: collection, labelStrategy: strategy},
		)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s Store) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
