package store

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  is_proxy_user BOOLEAN NOT NULL DEFAULT 0,
  is_reviewer BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS courses (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS course_responsibles (
  course_id INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (course_id, user_id)
);

-- delegate_id represents user_id
CREATE TABLE IF NOT EXISTS delegations (
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  delegate_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (user_id, delegate_id)
);

CREATE TABLE IF NOT EXISTS evaluations (
  id INTEGER PRIMARY KEY,
  course_id INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  state INTEGER NOT NULL,
  weight REAL NOT NULL DEFAULT 1,
  is_single_result BOOLEAN NOT NULL DEFAULT 0,
  num_participants INTEGER NOT NULL DEFAULT 0,
  num_voters INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS questionnaires (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  is_single_result BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS questions (
  id INTEGER PRIMARY KEY,
  questionnaire_id INTEGER NOT NULL REFERENCES questionnaires(id) ON DELETE CASCADE,
  position INTEGER NOT NULL DEFAULT 0,
  type INTEGER NOT NULL,
  text TEXT NOT NULL DEFAULT '',
  allows_additional_textanswers BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS contributions (
  id INTEGER PRIMARY KEY,
  evaluation_id INTEGER NOT NULL REFERENCES evaluations(id) ON DELETE CASCADE,
  contributor_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
  label TEXT NOT NULL DEFAULT '',
  textanswer_visibility TEXT NOT NULL DEFAULT 'OWN'
);

CREATE TABLE IF NOT EXISTS contribution_questionnaires (
  contribution_id INTEGER NOT NULL REFERENCES contributions(id) ON DELETE CASCADE,
  questionnaire_id INTEGER NOT NULL REFERENCES questionnaires(id) ON DELETE CASCADE,
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (contribution_id, questionnaire_id)
);

CREATE TABLE IF NOT EXISTS rating_answer_counters (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  contribution_id INTEGER NOT NULL REFERENCES contributions(id) ON DELETE CASCADE,
  answer INTEGER NOT NULL,
  count INTEGER NOT NULL DEFAULT 0,
  UNIQUE (question_id, contribution_id, answer)
);

CREATE TABLE IF NOT EXISTS text_answers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  contribution_id INTEGER NOT NULL REFERENCES contributions(id) ON DELETE CASCADE,
  answer TEXT NOT NULL,
  state TEXT NOT NULL DEFAULT 'NR'
);

CREATE INDEX IF NOT EXISTS idx_contributions_evaluation ON contributions(evaluation_id);
CREATE INDEX IF NOT EXISTS idx_counters_contribution ON rating_answer_counters(contribution_id, question_id);
CREATE INDEX IF NOT EXISTS idx_text_answers_contribution ON text_answers(contribution_id, question_id);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id BIGINT PRIMARY KEY,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  is_proxy_user BOOLEAN NOT NULL DEFAULT FALSE,
  is_reviewer BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS courses (
  id BIGINT PRIMARY KEY,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS course_responsibles (
  course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (course_id, user_id)
);

CREATE TABLE IF NOT EXISTS delegations (
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  delegate_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (user_id, delegate_id)
);

CREATE TABLE IF NOT EXISTS evaluations (
  id BIGINT PRIMARY KEY,
  course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  state INTEGER NOT NULL,
  weight DOUBLE PRECISION NOT NULL DEFAULT 1,
  is_single_result BOOLEAN NOT NULL DEFAULT FALSE,
  num_participants INTEGER NOT NULL DEFAULT 0,
  num_voters INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS questionnaires (
  id BIGINT PRIMARY KEY,
  name TEXT NOT NULL,
  is_single_result BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS questions (
  id BIGINT PRIMARY KEY,
  questionnaire_id BIGINT NOT NULL REFERENCES questionnaires(id) ON DELETE CASCADE,
  position INTEGER NOT NULL DEFAULT 0,
  type INTEGER NOT NULL,
  text TEXT NOT NULL DEFAULT '',
  allows_additional_textanswers BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS contributions (
  id BIGINT PRIMARY KEY,
  evaluation_id BIGINT NOT NULL REFERENCES evaluations(id) ON DELETE CASCADE,
  contributor_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
  label TEXT NOT NULL DEFAULT '',
  textanswer_visibility TEXT NOT NULL DEFAULT 'OWN'
);

CREATE TABLE IF NOT EXISTS contribution_questionnaires (
  contribution_id BIGINT NOT NULL REFERENCES contributions(id) ON DELETE CASCADE,
  questionnaire_id BIGINT NOT NULL REFERENCES questionnaires(id) ON DELETE CASCADE,
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (contribution_id, questionnaire_id)
);

CREATE TABLE IF NOT EXISTS rating_answer_counters (
  id BIGSERIAL PRIMARY KEY,
  question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  contribution_id BIGINT NOT NULL REFERENCES contributions(id) ON DELETE CASCADE,
  answer INTEGER NOT NULL,
  count INTEGER NOT NULL DEFAULT 0,
  UNIQUE (question_id, contribution_id, answer)
);

CREATE TABLE IF NOT EXISTS text_answers (
  id BIGSERIAL PRIMARY KEY,
  question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  contribution_id BIGINT NOT NULL REFERENCES contributions(id) ON DELETE CASCADE,
  answer TEXT NOT NULL,
  state TEXT NOT NULL DEFAULT 'NR'
);

CREATE INDEX IF NOT EXISTS idx_contributions_evaluation ON contributions(evaluation_id);
CREATE INDEX IF NOT EXISTS idx_counters_contribution ON rating_answer_counters(contribution_id, question_id);
CREATE INDEX IF NOT EXISTS idx_text_answers_contribution ON text_answers(contribution_id, question_id);
`
