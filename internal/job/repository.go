package job

import (
	"database/sql"
	"sort"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const jobColumns = `id, external_id, title, company, company_logo, location_type, level, tech_tags, url, source, salary, posted_date, description, job_type, status, lifecycle_status, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scanner) (PersistedJob, error) {
	var j PersistedJob
	var status sql.NullString
	var postedDate pq.NullTime
	err := row.Scan(
		&j.ID,
		&j.ExternalID,
		&j.Title,
		&j.Company,
		&j.CompanyLogo,
		&j.LocationType,
		&j.Level,
		pq.Array(&j.TechTags),
		&j.URL,
		&j.Source,
		&j.Salary,
		&postedDate,
		&j.Description,
		&j.JobType,
		&status,
		&j.LifecycleStatus,
		&j.CreatedAt,
	)
	if err != nil {
		return j, err
	}
	if postedDate.Valid {
		t := postedDate.Time
		j.PostedDate = &t
	}
	if status.Valid {
		j.Status = Status(status.String)
	}
	if j.TechTags == nil {
		j.TechTags = []string{}
	}
	return j, nil
}

func scanJobs(rows *sql.Rows) ([]PersistedJob, error) {
	defer rows.Close()
	jobs := make([]PersistedJob, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func allowedLocations() interface{} {
	locs := make([]string, 0, len(AllowedLocationTypes))
	for _, l := range AllowedLocationTypes {
		locs = append(locs, string(l))
	}
	return pq.Array(locs)
}

func (r *Repository) GetJobsBySource(source Source) ([]PersistedJob, error) {
	rows, err := r.db.Query(`SELECT `+jobColumns+` FROM jobs WHERE source = $1 ORDER BY id ASC`, source)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to get jobs for %s", source)
	}
	return scanJobs(rows)
}

// InsertJobs stores every job whose (external_id, source) pair is not yet
// known and returns how many were new. Duplicates are skipped silently.
func (r *Repository) InsertJobs(jobs []Job) (int, error) {
	stmt := `INSERT INTO jobs (external_id, title, company, company_logo, location_type, level, tech_tags, url, source, salary, posted_date, description, job_type, lifecycle_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		ON CONFLICT (external_id, source) DO NOTHING`
	var added int
	for _, j := range jobs {
		tags := j.TechTags
		if tags == nil {
			tags = []string{}
		}
		res, err := r.db.Exec(
			stmt,
			j.ExternalID,
			j.Title,
			j.Company,
			j.CompanyLogo,
			j.LocationType,
			j.Level,
			pq.Array(tags),
			j.URL,
			j.Source,
			j.Salary,
			j.PostedDate,
			j.Description,
			j.JobType,
			LifecycleNew,
		)
		if err != nil {
			return added, errors.Wrapf(err, "unable to insert job %s/%s", j.Source, j.ExternalID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return added, errors.Wrap(err, "unable to count inserted rows")
		}
		added += int(n)
	}
	return added, nil
}

func (r *Repository) UpdateJobsLifecycleStatusBulk(ids []int, status LifecycleStatus) error {
	if len(ids) == 0 {
		return nil
	}
	ids64 := make([]int64, len(ids))
	for i, id := range ids {
		ids64[i] = int64(id)
	}
	_, err := r.db.Exec(`UPDATE jobs SET lifecycle_status = $1 WHERE id = ANY($2)`, status, pq.Array(ids64))
	return errors.Wrapf(err, "unable to mark %d jobs %s", len(ids), status)
}

// JobsByQuery filters in SQL, then sorts and paginates in memory because
// the pay sort parses free-text salaries.
func (r *Repository) JobsByQuery(q Query) (QueryResult, error) {
	where := []string{`location_type = ANY($1)`}
	args := []interface{}{allowedLocations()}
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, s)
		n := len(args)
		where = append(where, `(title ILIKE '%' || $`+strconv.Itoa(n)+` || '%' OR company ILIKE '%' || $`+strconv.Itoa(n)+` || '%' OR EXISTS (SELECT 1 FROM unnest(tech_tags) t WHERE t ILIKE '%' || $`+strconv.Itoa(n)+` || '%'))`)
	}
	if l := strings.TrimSpace(q.Level); l != "" {
		args = append(args, l)
		where = append(where, `level ILIKE '%' || $`+strconv.Itoa(len(args))+` || '%'`)
	}
	if len(q.Companies) > 0 {
		args = append(args, pq.Array(q.Companies))
		where = append(where, `company = ANY($`+strconv.Itoa(len(args))+`)`)
	}
	if q.Lifecycle != "" {
		args = append(args, q.Lifecycle)
		where = append(where, `lifecycle_status = $`+strconv.Itoa(len(args)))
	}
	rows, err := r.db.Query(`SELECT `+jobColumns+` FROM jobs WHERE `+strings.Join(where, " AND ")+` ORDER BY posted_date DESC NULLS LAST, created_at DESC`, args...)
	if err != nil {
		return QueryResult{}, errors.Wrap(err, "unable to query jobs")
	}
	jobs, err := scanJobs(rows)
	if err != nil {
		return QueryResult{}, errors.Wrap(err, "unable to scan jobs")
	}
	Sort(jobs, q.Sort)
	return Paginate(jobs, q.Page, q.Limit), nil
}

// Paginate slices one 1-based page out of jobs.
func Paginate(jobs []PersistedJob, page, limit int) QueryResult {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	res := QueryResult{Total: len(jobs), Page: page, TotalPages: (len(jobs) + limit - 1) / limit}
	start := (page - 1) * limit
	if start > len(jobs) {
		start = len(jobs)
	}
	end := start + limit
	if end > len(jobs) {
		end = len(jobs)
	}
	res.Jobs = jobs[start:end]
	return res
}

func (r *Repository) GetJobByID(id int) (PersistedJob, error) {
	j, err := scanJob(r.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return j, ErrJobNotFound
	}
	return j, errors.Wrapf(err, "unable to get job %d", id)
}

// SetJobStatus records the user's own action on a job. StatusNone clears it.
func (r *Repository) SetJobStatus(id int, status Status) (PersistedJob, error) {
	var value interface{}
	if status != StatusNone {
		value = string(status)
	}
	j, err := scanJob(r.db.QueryRow(`UPDATE jobs SET status = $1 WHERE id = $2 RETURNING `+jobColumns, value, id))
	if err == sql.ErrNoRows {
		return j, ErrJobNotFound
	}
	return j, errors.Wrapf(err, "unable to set status of job %d", id)
}

// GetCompanies lists distinct known company names in alphabetical order.
func (r *Repository) GetCompanies() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT company FROM jobs WHERE company <> $1 AND location_type = ANY($2) ORDER BY company ASC`, "Unknown", allowedLocations())
	if err != nil {
		return nil, errors.Wrap(err, "unable to get companies")
	}
	defer rows.Close()
	companies := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return companies, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// LatestJobs returns the newest jobs still listed upstream.
func (r *Repository) LatestJobs(limit int) ([]PersistedJob, error) {
	rows, err := r.db.Query(`SELECT `+jobColumns+` FROM jobs WHERE lifecycle_status <> $1 AND location_type = ANY($2) ORDER BY created_at DESC LIMIT $3`, LifecycleInactive, allowedLocations(), limit)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get latest jobs")
	}
	return scanJobs(rows)
}

func (r *Repository) countBy(column string, limit int) ([]CountBy, error) {
	stmt := `SELECT ` + column + `, COUNT(*) AS c FROM jobs WHERE location_type = ANY($1) AND ` + column + ` <> '' GROUP BY ` + column + ` ORDER BY c DESC, ` + column + ` ASC`
	args := []interface{}{allowedLocations()}
	if column == "company" {
		stmt = strings.Replace(stmt, "GROUP BY", "AND company <> 'Unknown' GROUP BY", 1)
	}
	if limit > 0 {
		stmt += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.Query(stmt, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to count jobs by %s", column)
	}
	defer rows.Close()
	counts := make([]CountBy, 0)
	for rows.Next() {
		var c CountBy
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return counts, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *Repository) GetStats() (Stats, error) {
	var s Stats
	row := r.db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT company) FILTER (WHERE company <> 'Unknown'), COUNT(DISTINCT source) FROM jobs WHERE location_type = ANY($1)`, allowedLocations())
	if err := row.Scan(&s.TotalJobs, &s.TotalCompanies, &s.TotalSources); err != nil {
		return s, errors.Wrap(err, "unable to count jobs")
	}
	var err error
	if s.ByLevel, err = r.countBy("level", 0); err != nil {
		return s, err
	}
	if s.BySource, err = r.countBy("source", 0); err != nil {
		return s, err
	}
	if s.ByLocationType, err = r.countBy("location_type", 0); err != nil {
		return s, err
	}
	if s.ByLifecycle, err = r.countBy("lifecycle_status", 0); err != nil {
		return s, err
	}
	if s.TopCompanies, err = r.countBy("company", 20); err != nil {
		return s, err
	}

	rows, err := r.db.Query(`SELECT salary FROM jobs WHERE salary <> '' AND location_type = ANY($1)`, allowedLocations())
	if err != nil {
		return s, errors.Wrap(err, "unable to get salaries")
	}
	defer rows.Close()
	var salaries []string
	for rows.Next() {
		var salary string
		if err := rows.Scan(&salary); err != nil {
			return s, err
		}
		salaries = append(salaries, salary)
	}
	if err := rows.Err(); err != nil {
		return s, err
	}
	s.SalarySampleSize, s.SalaryP50, s.SalaryP90 = SalaryPercentiles(salaries)
	return s, nil
}

// SalaryPercentiles computes the median and 90th percentile of the upper
// bounds of every parseable salary range.
func SalaryPercentiles(salaries []string) (n int, p50, p90 int64) {
	var sample stats.Sample
	for _, s := range salaries {
		if max, ok := MaxSalary(s); ok {
			sample.Xs = append(sample.Xs, float64(max))
		}
	}
	if len(sample.Xs) == 0 {
		return 0, 0, 0
	}
	sort.Float64s(sample.Xs)
	sample.Sorted = true
	return len(sample.Xs), int64(sample.Quantile(0.5)), int64(sample.Quantile(0.9))
}
