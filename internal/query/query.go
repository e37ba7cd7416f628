// Package query compiles the search mini-language into a parameterized
// filter plan. The grammar, tokenized on whitespace:
//
//	tag:<value>   document carries tag <value>; multiple tag: tokens OR together
//	year:<value>  creation year equals <value> (4 digits); multiple OR together
//	mime:<value>  some file's MIME type contains <value>; multiple OR together
//	-<value>      neither title nor notes contains <value>; every exclusion applies
//	AND, OR       boolean operators between literal terms (exact case)
//	anything else literal term: title or notes contains it
//
// Literal terms must be joined by an explicit AND or OR. The tag, year, mime,
// and exclusion groups are ANDed with each other and with the literal
// expression; an absent group imposes nothing. An empty query compiles to an
// empty plan (all documents).
package query

import (
	"strings"

	"docstore/internal/errors"
)

// Plan is a compiled query: SQL predicate fragments plus their bound args,
// in matching order. Fragments filter rows of the documents table aliased
// as d; tag and mime constraints run as subqueries against the tags and
// files tables. Values are always bound, never interpolated.
type Plan struct {
	Predicates []string
	Args       []any
}

// Empty reports whether the plan imposes no constraints.
func (p *Plan) Empty() bool {
	return len(p.Predicates) == 0
}

// fragment is one element of the ordered literal expression.
type fragment struct {
	operator bool
	text     string
}

// Parse tokenizes and compiles a raw query string.
// Malformed tokens and malformed literal expressions are rejected with a
// VALIDATION error before anything reaches the database.
func Parse(raw string) (*Plan, error) {
	var (
		tags     []string
		years    []string
		mimes    []string
		excludes []string
		literals []fragment
	)
	seen := map[string]bool{}

	// collect collapses repeated identical tokens, so duplicates are idempotent
	collect := func(bag *[]string, kind, value string) {
		key := kind + "\x00" + value
		if seen[key] {
			return
		}
		seen[key] = true
		*bag = append(*bag, value)
	}

	for _, tok := range strings.Fields(raw) {
		switch {
		case strings.HasPrefix(tok, "tag:"):
			v := tok[len("tag:"):]
			if v == "" {
				return nil, errors.NewBadQuery(tok, "empty value")
			}
			collect(&tags, "tag", v)

		case strings.HasPrefix(tok, "year:"):
			v := tok[len("year:"):]
			if v == "" {
				return nil, errors.NewBadQuery(tok, "empty value")
			}
			if !isYear(v) {
				return nil, errors.NewBadQuery(tok, "year must be exactly 4 digits")
			}
			collect(&years, "year", v)

		case strings.HasPrefix(tok, "mime:"):
			v := tok[len("mime:"):]
			if v == "" {
				return nil, errors.NewBadQuery(tok, "empty value")
			}
			collect(&mimes, "mime", v)

		case strings.HasPrefix(tok, "-"):
			v := tok[1:]
			if v == "" {
				return nil, errors.NewBadQuery(tok, "empty value")
			}
			collect(&excludes, "exclude", v)

		case tok == "AND" || tok == "OR":
			literals = append(literals, fragment{operator: true, text: tok})

		default:
			literals = append(literals, fragment{operator: false, text: tok})
		}
	}

	if err := checkLiterals(literals); err != nil {
		return nil, err
	}

	return compile(tags, years, mimes, excludes, literals), nil
}

// checkLiterals enforces the literal expression shape: term (operator term)*.
func checkLiterals(literals []fragment) error {
	for i, f := range literals {
		if f.operator {
			if i == 0 {
				return errors.NewBadQuery(f.text, "expression cannot start with an operator")
			}
			if i == len(literals)-1 {
				return errors.NewBadQuery(f.text, "expression cannot end with an operator")
			}
			if literals[i-1].operator {
				return errors.NewBadQuery(f.text, "consecutive operators")
			}
		} else if i > 0 && !literals[i-1].operator {
			return errors.NewBadQuery(f.text, "literal terms must be joined with AND or OR")
		}
	}
	return nil
}

// compile turns the collected groups into predicate fragments. Groups are
// ANDed by the consumer; OR only ever appears inside a group or where the
// user typed it.
func compile(tags, years, mimes, excludes []string, literals []fragment) *Plan {
	p := &Plan{}

	if len(tags) > 0 {
		conds := make([]string, len(tags))
		for i, v := range tags {
			conds[i] = "tag = ?"
			p.Args = append(p.Args, v)
		}
		p.Predicates = append(p.Predicates,
			"d.document_id IN (SELECT document_id FROM tags WHERE "+strings.Join(conds, " OR ")+")")
	}

	if len(years) > 0 {
		conds := make([]string, len(years))
		for i, v := range years {
			conds[i] = "strftime('%Y', d.created_at, 'unixepoch', 'localtime') = ?"
			p.Args = append(p.Args, v)
		}
		p.Predicates = append(p.Predicates, "("+strings.Join(conds, " OR ")+")")
	}

	if len(mimes) > 0 {
		conds := make([]string, len(mimes))
		for i, v := range mimes {
			conds[i] = "mimetype LIKE ?"
			p.Args = append(p.Args, "%"+v+"%")
		}
		p.Predicates = append(p.Predicates,
			"d.document_id IN (SELECT document_id FROM files WHERE "+strings.Join(conds, " OR ")+")")
	}

	// One pair per exclusion; the pairs AND together with everything else
	for _, v := range excludes {
		p.Predicates = append(p.Predicates, "(d.title NOT LIKE ? AND d.notes NOT LIKE ?)")
		p.Args = append(p.Args, "%"+v+"%", "%"+v+"%")
	}

	if len(literals) > 0 {
		var sb strings.Builder
		sb.WriteString("(")
		for i, f := range literals {
			if i > 0 {
				sb.WriteString(" ")
			}
			if f.operator {
				sb.WriteString(f.text)
			} else {
				sb.WriteString("(d.title LIKE ? OR d.notes LIKE ?)")
				p.Args = append(p.Args, "%"+f.text+"%", "%"+f.text+"%")
			}
		}
		sb.WriteString(")")
		// Parenthesized as a whole so a user-typed OR cannot widen the
		// other groups
		p.Predicates = append(p.Predicates, sb.String())
	}

	return p
}

// isYear reports whether s is exactly four ASCII digits.
func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
