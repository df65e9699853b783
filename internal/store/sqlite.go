package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okempf/jobscout/internal/model"
)

// SQLiteStore is the persistence gateway: users, CVs, job postings,
// applications and search history in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		email           TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		is_active       INTEGER NOT NULL DEFAULT 1,
		created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS cvs (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		title             TEXT NOT NULL,
		language          TEXT NOT NULL DEFAULT 'en',
		content           TEXT,
		original_pdf_path TEXT,
		skills            TEXT,
		experience        TEXT,
		education         TEXT,
		personal_info     TEXT,
		is_base_cv        INTEGER NOT NULL DEFAULT 0,
		owner_id          INTEGER NOT NULL REFERENCES users(id),
		created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		external_id      TEXT NOT NULL UNIQUE,
		title            TEXT NOT NULL,
		company          TEXT,
		location         TEXT,
		description      TEXT,
		requirements     TEXT,
		salary_range     TEXT,
		job_type         TEXT,
		remote_option    INTEGER NOT NULL DEFAULT 0,
		posted_date      DATETIME,
		deadline         DATETIME,
		source           TEXT,
		url              TEXT,
		skills_required  TEXT,
		experience_level TEXT,
		match_score      REAL,
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		status             TEXT NOT NULL DEFAULT 'pending',
		cover_letter       TEXT,
		adapted_cv_content TEXT,
		notes              TEXT,
		applied_date       DATETIME,
		response_date      DATETIME,
		interview_date     DATETIME,
		created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at         DATETIME,
		user_id            INTEGER NOT NULL REFERENCES users(id),
		job_id             INTEGER NOT NULL REFERENCES jobs(id),
		cv_id              INTEGER NOT NULL REFERENCES cvs(id)
	)`,
	`CREATE TABLE IF NOT EXISTS job_searches (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		query         TEXT NOT NULL,
		location      TEXT,
		filters       TEXT,
		results_count INTEGER NOT NULL DEFAULT 0,
		user_id       INTEGER NOT NULL REFERENCES users(id),
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists. Use ":memory:" for tests.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---- users ----

// CreateUser inserts a new user row.
func (s *SQLiteStore) CreateUser(email, hashedPassword string) (*model.User, error) {
	res, err := s.db.Exec(
		"INSERT INTO users (email, hashed_password) VALUES (?, ?)",
		email, hashedPassword,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user %s: %w", email, err)
	}
	id, _ := res.LastInsertId()
	return s.GetUser(id)
}

// GetUser fetches one user by id.
func (s *SQLiteStore) GetUser(id int64) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		"SELECT id, email, hashed_password, is_active, created_at FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user %d: %w", id, err)
	}
	return &u, nil
}

// GetUserByEmail fetches one user by email.
func (s *SQLiteStore) GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		"SELECT id, email, hashed_password, is_active, created_at FROM users WHERE email = ?", email,
	).Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", email, err)
	}
	return &u, nil
}

// ---- cvs ----

const cvColumns = `id, title, language, content, original_pdf_path, skills,
	experience, education, personal_info, is_base_cv, owner_id, created_at, updated_at`

// CreateCV inserts a CV and fills its ID.
func (s *SQLiteStore) CreateCV(cv *model.CV) error {
	res, err := s.db.Exec(
		`INSERT INTO cvs (title, language, content, original_pdf_path, skills,
			experience, education, personal_info, is_base_cv, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cv.Title, cv.Language, string(cv.Content), cv.OriginalPDFPath,
		mustJSON(cv.Skills), mustJSON(cv.Experience),
		string(cv.Education), string(cv.PersonalInfo),
		cv.IsBaseCV, cv.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("creating cv %q: %w", cv.Title, err)
	}
	cv.ID, _ = res.LastInsertId()
	cv.CreatedAt = time.Now()
	return nil
}

func scanCV(row interface{ Scan(...any) error }) (*model.CV, error) {
	var (
		cv                            model.CV
		content, edu, pinfo           sql.NullString
		skills, experience, pdfPath   sql.NullString
		updatedAt                     sql.NullTime
	)
	err := row.Scan(&cv.ID, &cv.Title, &cv.Language, &content, &pdfPath,
		&skills, &experience, &edu, &pinfo, &cv.IsBaseCV, &cv.OwnerID,
		&cv.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning cv: %w", err)
	}
	cv.Content = json.RawMessage(content.String)
	cv.Education = json.RawMessage(edu.String)
	cv.PersonalInfo = json.RawMessage(pinfo.String)
	cv.OriginalPDFPath = pdfPath.String
	if updatedAt.Valid {
		cv.UpdatedAt = &updatedAt.Time
	}
	if skills.Valid && skills.String != "" {
		if err := json.Unmarshal([]byte(skills.String), &cv.Skills); err != nil {
			return nil, fmt.Errorf("decoding cv skills: %w", err)
		}
	}
	if experience.Valid && experience.String != "" {
		if err := json.Unmarshal([]byte(experience.String), &cv.Experience); err != nil {
			return nil, fmt.Errorf("decoding cv experience: %w", err)
		}
	}
	return &cv, nil
}

// GetCV fetches one CV owned by ownerID.
func (s *SQLiteStore) GetCV(id, ownerID int64) (*model.CV, error) {
	row := s.db.QueryRow(
		"SELECT "+cvColumns+" FROM cvs WHERE id = ? AND owner_id = ?", id, ownerID)
	return scanCV(row)
}

// ListCVs returns all CVs owned by ownerID, newest first.
func (s *SQLiteStore) ListCVs(ownerID int64) ([]model.CV, error) {
	return s.queryCVs("SELECT "+cvColumns+" FROM cvs WHERE owner_id = ? ORDER BY id DESC", ownerID)
}

// ListBaseCVs returns the owner's base (non-adapted) CVs.
func (s *SQLiteStore) ListBaseCVs(ownerID int64) ([]model.CV, error) {
	return s.queryCVs("SELECT "+cvColumns+" FROM cvs WHERE owner_id = ? AND is_base_cv = 1 ORDER BY id", ownerID)
}

func (s *SQLiteStore) queryCVs(query string, args ...any) ([]model.CV, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing cvs: %w", err)
	}
	defer rows.Close()

	var cvs []model.CV
	for rows.Next() {
		cv, err := scanCV(rows)
		if err != nil {
			return nil, err
		}
		cvs = append(cvs, *cv)
	}
	return cvs, rows.Err()
}

// UpdateCV rewrites the mutable CV columns and stamps updated_at.
func (s *SQLiteStore) UpdateCV(cv *model.CV) error {
	res, err := s.db.Exec(
		`UPDATE cvs SET title = ?, content = ?, skills = ?, experience = ?,
			education = ?, personal_info = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND owner_id = ?`,
		cv.Title, string(cv.Content), mustJSON(cv.Skills), mustJSON(cv.Experience),
		string(cv.Education), string(cv.PersonalInfo), cv.ID, cv.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating cv %d: %w", cv.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteCV removes a CV owned by ownerID.
func (s *SQLiteStore) DeleteCV(id, ownerID int64) error {
	res, err := s.db.Exec("DELETE FROM cvs WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting cv %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ---- jobs ----

const jobColumns = `id, external_id, title, company, location, description,
	requirements, salary_range, job_type, remote_option, posted_date, deadline,
	source, url, skills_required, experience_level, match_score, created_at`

// InsertJobIfAbsent inserts a posting unless its external_id is already
// known. Returns true when a new row was written. Re-running the same
// search is a no-op for already-seen postings.
func (s *SQLiteStore) InsertJobIfAbsent(p *model.JobPosting) (bool, error) {
	res, err := s.db.Exec(
		`INSERT INTO jobs (external_id, title, company, location, description,
			requirements, salary_range, job_type, remote_option, posted_date,
			deadline, source, url, skills_required, experience_level, match_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(external_id) DO NOTHING`,
		p.ExternalID, p.Title, p.Company, p.Location, p.Description,
		p.Requirements, p.SalaryRange, p.JobType, p.RemoteOption, p.PostedDate,
		nullTime(p.Deadline), p.Source, p.URL, mustJSON(p.SkillsRequired),
		p.ExperienceLevel, nullFloat(p.MatchScore),
	)
	if err != nil {
		return false, fmt.Errorf("upserting job %s: %w", p.ExternalID, err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		p.ID, _ = res.LastInsertId()
		return true, nil
	}
	// Row existed; load its id so callers hold a stable reference.
	existing, err := s.GetJobByExternalID(p.ExternalID)
	if err != nil {
		return false, err
	}
	p.ID = existing.ID
	return false, nil
}

// CreateJob inserts a manually entered posting. Duplicate external IDs fail.
func (s *SQLiteStore) CreateJob(p *model.JobPosting) error {
	res, err := s.db.Exec(
		`INSERT INTO jobs (external_id, title, company, location, description,
			requirements, salary_range, job_type, remote_option, posted_date,
			deadline, source, url, skills_required, experience_level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ExternalID, p.Title, p.Company, p.Location, p.Description,
		p.Requirements, p.SalaryRange, p.JobType, p.RemoteOption, p.PostedDate,
		nullTime(p.Deadline), p.Source, p.URL, mustJSON(p.SkillsRequired),
		p.ExperienceLevel,
	)
	if err != nil {
		return fmt.Errorf("creating job %s: %w", p.ExternalID, err)
	}
	p.ID, _ = res.LastInsertId()
	return nil
}

func scanJob(row interface{ Scan(...any) error }) (*model.JobPosting, error) {
	var (
		p                    model.JobPosting
		skills               sql.NullString
		company, location    sql.NullString
		desc, reqs, salary   sql.NullString
		jobType, src, u, lvl sql.NullString
		posted, deadline     sql.NullTime
		score                sql.NullFloat64
	)
	err := row.Scan(&p.ID, &p.ExternalID, &p.Title, &company, &location, &desc,
		&reqs, &salary, &jobType, &p.RemoteOption, &posted, &deadline,
		&src, &u, &skills, &lvl, &score, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	p.Company = company.String
	p.Location = location.String
	p.Description = desc.String
	p.Requirements = reqs.String
	p.SalaryRange = salary.String
	p.JobType = jobType.String
	p.Source = src.String
	p.URL = u.String
	p.ExperienceLevel = lvl.String
	if posted.Valid {
		p.PostedDate = posted.Time
	}
	if deadline.Valid {
		p.Deadline = &deadline.Time
	}
	if score.Valid {
		p.MatchScore = &score.Float64
	}
	if skills.Valid && skills.String != "" {
		if err := json.Unmarshal([]byte(skills.String), &p.SkillsRequired); err != nil {
			return nil, fmt.Errorf("decoding job skills: %w", err)
		}
	}
	return &p, nil
}

// GetJob fetches one posting by internal id.
func (s *SQLiteStore) GetJob(id int64) (*model.JobPosting, error) {
	return scanJob(s.db.QueryRow("SELECT "+jobColumns+" FROM jobs WHERE id = ?", id))
}

// GetJobByExternalID fetches one posting by its namespaced external id.
func (s *SQLiteStore) GetJobByExternalID(externalID string) (*model.JobPosting, error) {
	return scanJob(s.db.QueryRow("SELECT "+jobColumns+" FROM jobs WHERE external_id = ?", externalID))
}

// GetJobsByIDs fetches the postings with the given internal ids in one
// query. Ids with no row (deleted jobs) are simply absent from the result.
func (s *SQLiteStore) GetJobsByIDs(ids []int64) ([]model.JobPosting, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query("SELECT "+jobColumns+" FROM jobs WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("fetching jobs by id: %w", err)
	}
	defer rows.Close()

	var jobs []model.JobPosting
	for rows.Next() {
		p, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *p)
	}
	return jobs, rows.Err()
}

// ListJobsOptions narrows ListJobs. Zero values are no-ops.
type ListJobsOptions struct {
	Offset   int
	Limit    int
	Location string // case-insensitive substring
	Company  string // case-insensitive substring
}

// ListJobs returns stored postings, newest posted first.
func (s *SQLiteStore) ListJobs(opts ListJobsOptions) ([]model.JobPosting, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	where := []string{"1=1"}
	args := []any{}
	if opts.Location != "" {
		where = append(where, "location LIKE ?")
		args = append(args, "%"+opts.Location+"%")
	}
	if opts.Company != "" {
		where = append(where, "company LIKE ?")
		args = append(args, "%"+opts.Company+"%")
	}
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.Query(
		"SELECT "+jobColumns+" FROM jobs WHERE "+strings.Join(where, " AND ")+
			" ORDER BY posted_date DESC, id DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.JobPosting
	for rows.Next() {
		p, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *p)
	}
	return jobs, rows.Err()
}

// UpdateJob rewrites a posting's mutable columns.
func (s *SQLiteStore) UpdateJob(p *model.JobPosting) error {
	res, err := s.db.Exec(
		`UPDATE jobs SET title = ?, company = ?, location = ?, description = ?,
			requirements = ?, salary_range = ?, job_type = ?, remote_option = ?,
			posted_date = ?, deadline = ?, url = ?, skills_required = ?,
			experience_level = ?, match_score = ?
		 WHERE id = ?`,
		p.Title, p.Company, p.Location, p.Description, p.Requirements,
		p.SalaryRange, p.JobType, p.RemoteOption, p.PostedDate,
		nullTime(p.Deadline), p.URL, mustJSON(p.SkillsRequired),
		p.ExperienceLevel, nullFloat(p.MatchScore), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating job %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// UpdateMatchScore caches a computed score onto a posting. Idempotent.
func (s *SQLiteStore) UpdateMatchScore(id int64, score float64) error {
	res, err := s.db.Exec("UPDATE jobs SET match_score = ? WHERE id = ?", score, id)
	if err != nil {
		return fmt.Errorf("updating match score for job %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteJob removes a posting.
func (s *SQLiteStore) DeleteJob(id int64) error {
	res, err := s.db.Exec("DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting job %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ---- applications ----

const applicationColumns = `id, status, cover_letter, adapted_cv_content, notes,
	applied_date, response_date, interview_date, created_at, updated_at,
	user_id, job_id, cv_id`

// CreateApplication inserts an application and fills its ID.
func (s *SQLiteStore) CreateApplication(a *model.Application) error {
	res, err := s.db.Exec(
		`INSERT INTO applications (status, cover_letter, adapted_cv_content,
			notes, user_id, job_id, cv_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Status, a.CoverLetter, string(a.AdaptedCVContent), a.Notes,
		a.UserID, a.JobID, a.CVID,
	)
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}
	a.ID, _ = res.LastInsertId()
	a.CreatedAt = time.Now()
	return nil
}

func scanApplication(row interface{ Scan(...any) error }) (*model.Application, error) {
	var (
		a                          model.Application
		cover, adapted, notes      sql.NullString
		applied, resp, intv, updat sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Status, &cover, &adapted, &notes,
		&applied, &resp, &intv, &a.CreatedAt, &updat,
		&a.UserID, &a.JobID, &a.CVID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning application: %w", err)
	}
	a.CoverLetter = cover.String
	a.AdaptedCVContent = json.RawMessage(adapted.String)
	a.Notes = notes.String
	if applied.Valid {
		a.AppliedDate = &applied.Time
	}
	if resp.Valid {
		a.ResponseDate = &resp.Time
	}
	if intv.Valid {
		a.InterviewDate = &intv.Time
	}
	if updat.Valid {
		a.UpdatedAt = &updat.Time
	}
	return &a, nil
}

// GetApplication fetches one application owned by userID.
func (s *SQLiteStore) GetApplication(id, userID int64) (*model.Application, error) {
	return scanApplication(s.db.QueryRow(
		"SELECT "+applicationColumns+" FROM applications WHERE id = ? AND user_id = ?", id, userID))
}

// ListApplications returns all of a user's applications, newest first.
func (s *SQLiteStore) ListApplications(userID int64) ([]model.Application, error) {
	rows, err := s.db.Query(
		"SELECT "+applicationColumns+" FROM applications WHERE user_id = ? ORDER BY id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// UpdateApplication rewrites an application's mutable columns and stamps
// updated_at.
func (s *SQLiteStore) UpdateApplication(a *model.Application) error {
	res, err := s.db.Exec(
		`UPDATE applications SET status = ?, cover_letter = ?, notes = ?,
			adapted_cv_content = ?, applied_date = ?, response_date = ?,
			interview_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		a.Status, a.CoverLetter, a.Notes, string(a.AdaptedCVContent),
		nullTime(a.AppliedDate), nullTime(a.ResponseDate),
		nullTime(a.InterviewDate), a.ID, a.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating application %d: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteApplication removes an application owned by userID.
func (s *SQLiteStore) DeleteApplication(id, userID int64) error {
	res, err := s.db.Exec("DELETE FROM applications WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting application %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ---- search history ----

// AppendSearchHistory records one aggregated search. Append-only.
func (s *SQLiteStore) AppendSearchHistory(q *model.SearchQuery) error {
	res, err := s.db.Exec(
		"INSERT INTO job_searches (query, location, filters, results_count, user_id) VALUES (?, ?, ?, ?, ?)",
		q.Query, q.Location, mustJSON(q.Filters), q.ResultsCount, q.UserID,
	)
	if err != nil {
		return fmt.Errorf("appending search history: %w", err)
	}
	q.ID, _ = res.LastInsertId()
	return nil
}

// ListRecentSearches returns the most recent distinct search queries across
// all users, newest first. The refresher replays these.
func (s *SQLiteStore) ListRecentSearches(limit int) ([]model.SearchQuery, error) {
	rows, err := s.db.Query(
		`SELECT id, query, location, filters, results_count, user_id, created_at
		 FROM job_searches
		 GROUP BY user_id, query, location
		 ORDER BY MAX(id) DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent searches: %w", err)
	}
	defer rows.Close()

	var searches []model.SearchQuery
	for rows.Next() {
		var (
			q       model.SearchQuery
			filters sql.NullString
		)
		if err := rows.Scan(&q.ID, &q.Query, &q.Location, &filters,
			&q.ResultsCount, &q.UserID, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning search history: %w", err)
		}
		if filters.Valid && filters.String != "" {
			if err := json.Unmarshal([]byte(filters.String), &q.Filters); err != nil {
				return nil, fmt.Errorf("decoding search filters: %w", err)
			}
		}
		searches = append(searches, q)
	}
	return searches, rows.Err()
}

// AppliedJobIDs returns the job ids the user already has applications for.
func (s *SQLiteStore) AppliedJobIDs(userID int64) ([]int64, error) {
	rows, err := s.db.Query("SELECT job_id FROM applications WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("listing applied job ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning applied job id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ---- helpers ----

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
