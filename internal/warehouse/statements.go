package warehouse

import "fmt"

// Statements builds the templated SQL the extraction pipeline runs.
// External inputs (paths, endpoint names, prompts) are bound as
// parameters; table identifiers come from configuration validated at
// startup and are the only interpolated values.
type Statements struct {
	prefix     string
	volumePath string
	endpoint   string
}

// NewStatements derives pipeline statement builders from the catalog.schema
// prefix, the brochure volume path and the AI endpoint name.
func NewStatements(tablePrefix, volumePath, endpoint string) *Statements {
	return &Statements{prefix: tablePrefix, volumePath: volumePath, endpoint: endpoint}
}

func (s *Statements) ParsedTable() string   { return s.prefix + ".product_brochure_parsed" }
func (s *Statements) ResponseTable() string { return s.prefix + ".product_brochure_endpoint_response" }
func (s *Statements) FeatureTable() string  { return s.prefix + ".product_brochure_pricing_features" }

// Endpoint returns the configured AI endpoint name for error reporting.
func (s *Statements) Endpoint() string { return s.endpoint }

// ParseDocuments reads every blob under the upload prefix, parses the
// documents and collapses the per-element output into one text row per
// document, ordered by the stable intra-document element index.
func (s *Statements) ParseDocuments() Statement {
	sql := fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS
WITH parsed_documents AS (
  SELECT path, ai_parse_document(content) AS parsed
  FROM READ_FILES(?, format => 'binaryFile')
  WHERE lower(path) LIKE '%%.pdf'
),
sorted_contents AS (
  SELECT path, idx, element:content AS content
  FROM (
    SELECT path,
      posexplode(
        CASE
          WHEN try_cast(parsed:metadata:version AS STRING) = '1.0'
          THEN try_cast(parsed:document:pages AS ARRAY<VARIANT>)
          ELSE try_cast(parsed:document:elements AS ARRAY<VARIANT>)
        END
      ) AS (idx, element)
    FROM parsed_documents
    WHERE try_cast(parsed:error_status AS STRING) IS NULL
  )
)
SELECT
  path,
  concat_ws('\n\n', collect_list(content ORDER BY idx)) AS text,
  current_timestamp() AS parsed_timestamp
FROM sorted_contents
WHERE content IS NOT NULL
GROUP BY path`, s.ParsedTable())
	return Statement{SQL: sql, Args: []any{s.volumePath}}
}

// CountParsed verifies the parse step produced rows.
func (s *Statements) CountParsed() Statement {
	return Statement{SQL: fmt.Sprintf("SELECT COUNT(*) AS count FROM %s", s.ParsedTable())}
}

// ProbeEndpoint sends a fixed smoke-test prompt to the AI endpoint.
func (s *Statements) ProbeEndpoint() Statement {
	return Statement{
		SQL:  "SELECT ai_query(?, ?, failOnError => false) AS test_response",
		Args: []any{s.endpoint, "Test insurance product with minimum premium $1000"},
	}
}

// BatchInvoke runs the endpoint once per parsed document, capturing the
// result and a per-row error column.
func (s *Statements) BatchInvoke() Statement {
	sql := fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS
WITH query_results AS (
  SELECT
    text AS input,
    ai_query(?, text, failOnError => false) AS response,
    current_timestamp() AS timestamp
  FROM %s
)
SELECT
  input,
  response.result AS response,
  response.errorMessage AS error,
  timestamp
FROM query_results`, s.ResponseTable(), s.ParsedTable())
	return Statement{SQL: sql, Args: []any{s.endpoint}}
}

// ExtractFeatures pulls the structured fields out of the free-text JSON
// responses via named-path lookups. Rows with a non-null error column are
// excluded; absent or malformed fields yield NULL.
func (s *Statements) ExtractFeatures() Statement {
	sql := fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS
SELECT
  input,
  error,
  from_json(get_json_object(cast(response AS STRING), '$.issuing_company'), 'array<string>') AS issuing_company,
  get_json_object(cast(response AS STRING), '$.minimum_premium') AS minimum_premium,
  from_json(get_json_object(cast(response AS STRING), '$.withdrawal_options'), 'array<string>') AS withdrawal_options,
  get_json_object(cast(response AS STRING), '$.interest_crediting') AS interest_crediting,
  get_json_object(cast(response AS STRING), '$.surrender_charge_schedule') AS surrender_charge_schedule,
  get_json_object(cast(response AS STRING), '$.death_benefit') AS death_benefit,
  from_json(get_json_object(cast(response AS STRING), '$.available_riders'), 'array<string>') AS available_riders,
  get_json_object(cast(response AS STRING), '$.issue_ages') AS issue_ages,
  get_json_object(cast(response AS STRING), '$.guarantee_period') AS guarantee_period,
  get_json_object(cast(response AS STRING), '$.guaranteed_minimum_interest_rate') AS guaranteed_minimum_interest_rate,
  response AS features
FROM %s
WHERE error IS NULL`, s.FeatureTable(), s.ResponseTable())
	return Statement{SQL: sql}
}

// LatestFeatures reads the most recent feature row by reverse input order.
func (s *Statements) LatestFeatures() Statement {
	sql := fmt.Sprintf(`SELECT
  input,
  issuing_company,
  minimum_premium,
  withdrawal_options,
  interest_crediting,
  surrender_charge_schedule,
  death_benefit,
  available_riders,
  issue_ages,
  guarantee_period,
  guaranteed_minimum_interest_rate
FROM %s
ORDER BY input DESC
LIMIT 1`, s.FeatureTable())
	return Statement{SQL: sql}
}

// Invoke sends an arbitrary prompt to the AI endpoint; the assistant's
// warehouse transport uses it for chat turns.
func (s *Statements) Invoke(prompt string) Statement {
	return Statement{
		SQL:  "SELECT ai_query(?, ?) AS response",
		Args: []any{s.endpoint, prompt},
	}
}
