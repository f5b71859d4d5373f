package postgres

import "github.com/jackc/pgx/v5/pgtype"

// nullText writes "" as NULL.
func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// optionalText binds a filter that may be absent; nil means no filter.
func optionalText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func textValue(t pgtype.Text) string {
	if t.Valid {
		return t.String
	}
	return ""
}
