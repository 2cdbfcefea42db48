// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sqlwrap

import (
	"github.com/UNO-SOFT/jdbcx/internal/errs"
	"github.com/UNO-SOFT/jdbcx/internal/value"
)

// CombinedResultSet concatenates the *value.Result sequence produced by a
// multi-block document into one cursor, visiting every row of R1 before
// moving to R2 and so on (spec §4.8, invariant 5 of spec §8: "visits
// exactly Σ size(Ri) rows in the concatenation order").
//
// It is forward-only, read-only, and holds over commit — the concrete
// wrapped driver's own cursor semantics rather than anything reopenable,
// so positional navigation (absolute/relative/previous) is unsupported.
type CombinedResultSet struct {
	results []*value.Result
	cur     int       // index of the Result currently being iterated
	row     int       // 0-based row number within the whole concatenation
	started bool      // Next has been called at least once
	after   bool      // cursor moved past the last row of the last Result
	row0    value.Row // row most recently produced by Next
}

// NewCombinedResultSet builds a CombinedResultSet over results, visited in
// order.
func NewCombinedResultSet(results ...*value.Result) *CombinedResultSet {
	return &CombinedResultSet{results: results}
}

// Next advances to the next row across the whole concatenation, skipping
// over exhausted member Results transparently.
func (c *CombinedResultSet) Next() (bool, error) {
	c.started = true
	for c.cur < len(c.results) {
		r := c.results[c.cur]
		if r == nil {
			c.cur++
			continue
		}
		row, ok, err := r.Next()
		if err != nil {
			return false, err
		}
		if !ok {
			c.cur++
			continue
		}
		c.row0 = row
		c.row++
		return true, nil
	}
	c.after = true
	return false, nil
}

// Row returns the row Next most recently produced. Calling it before the
// first successful Next, or once the cursor has moved after the last row,
// is access on an empty cursor (spec §7 "NoData").
func (c *CombinedResultSet) Row() (value.Row, error) {
	if !c.started || c.row == 0 || c.after {
		return value.Row{}, errs.NoData("CombinedResultSet.Row")
	}
	return c.row0, nil
}

// RowNumber returns the 1-based global row number of the current row
// (spec §4.8 "global row numbering"), or 0 before the first Next call.
func (c *CombinedResultSet) RowNumber() int { return c.row }

// Fields returns the field list of the Result currently being iterated, or
// nil once every member Result is exhausted.
func (c *CombinedResultSet) Fields() []value.Field {
	if c.cur >= len(c.results) || c.results[c.cur] == nil {
		return nil
	}
	return c.results[c.cur].Fields()
}

// IsForwardOnly, IsReadOnly, and HoldsOverCommit advertise the fixed cursor
// capabilities of spec §4.8.
func (c *CombinedResultSet) IsForwardOnly() bool   { return true }
func (c *CombinedResultSet) IsReadOnly() bool      { return true }
func (c *CombinedResultSet) HoldsOverCommit() bool { return true }

// IsAfterLast reports whether the cursor has moved past the final row of
// the final member Result (Open Question (c), resolved: "after-last" is
// defined purely by Next() having returned false from every member in
// sequence, never by peeking ahead — this keeps the cursor a single pass
// over each member, exactly as database/sql's own *sql.Rows behaves, with
// no separate end-of-data sentinel per member).
func (c *CombinedResultSet) IsAfterLast() bool { return c.after }

// Absolute, Relative, and Previous are unavailable on this forward-only
// cursor (spec §7 "FeatureNotSupported").
func (c *CombinedResultSet) Absolute(int) (bool, error) { return false, errs.FeatureNotSupported("CombinedResultSet.Absolute") }
func (c *CombinedResultSet) Relative(int) (bool, error) { return false, errs.FeatureNotSupported("CombinedResultSet.Relative") }
func (c *CombinedResultSet) Previous() (bool, error)    { return false, errs.FeatureNotSupported("CombinedResultSet.Previous") }

// Close closes every non-nil member Result, chaining every close error
// into one errs.Chain rather than stopping at the first failure (spec
// §4.8, invariant 5 of spec §8: "close() closes every non-null Ri even if
// one close throws").
func (c *CombinedResultSet) Close() error {
	var chain errs.Chain
	for _, r := range c.results {
		if r == nil {
			continue
		}
		if err := r.Close(); err != nil {
			chain = errs.AppendChain(chain, err)
		}
	}
	return chain.AsError()
}
