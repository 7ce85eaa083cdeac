package store

// Schema v1 - cleaning run history
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per cleaning run
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  source_path TEXT NOT NULL,
  snapshot_path TEXT,
  encoding TEXT,
  rows_in INTEGER DEFAULT 0,
  rows_out INTEGER DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'running',
  error TEXT,
  started_at DATETIME NOT NULL,
  finished_at DATETIME
);

-- Per-stage outcome of a run, in pipeline order
CREATE TABLE IF NOT EXISTS stage_results (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL,
  stage TEXT NOT NULL,
  rows_before INTEGER NOT NULL,
  rows_after INTEGER NOT NULL,
  changed INTEGER DEFAULT 0,
  skipped INTEGER DEFAULT 0,
  note TEXT,
  duration_ms INTEGER DEFAULT 0,
  PRIMARY KEY (run_id, seq)
);
`

// Schema v2 - Indexes for history listing
const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_stage_results_stage ON stage_results(stage);
`
