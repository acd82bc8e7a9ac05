package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaidimu/go-tafsiri/core/query"
	"github.com/asaidimu/go-tafsiri/core/schema"
)

func compileCriteria(t *testing.T, raw string) Predicate {
	t.Helper()
	criteria, err := query.ParseCriteria(mustSurface(t, raw))
	require.NoError(t, err)
	pred, err := testCompiler().CompileCriteria(criteria)
	require.NoError(t, err)
	return pred
}

func criteriaError(t *testing.T, raw string) error {
	t.Helper()
	criteria, err := query.ParseCriteria(mustSurface(t, raw))
	require.NoError(t, err)
	_, err = testCompiler().CompileCriteria(criteria)
	require.Error(t, err)
	return err
}

func TestCompileCriteria_EmptyIsTrue(t *testing.T) {
	assert.Nil(t, compileCriteria(t, `null`))
	assert.Nil(t, compileCriteria(t, `{}`))
}

func TestCompileCriteria_ScalarShorthandEqualsExplicitEq(t *testing.T) {
	shorthand := compileCriteria(t, `{"age": 5}`)
	explicit := compileCriteria(t, `{"age": {"$eq": 5}}`)
	assert.Equal(t, explicit, shorthand)

	cmp, ok := shorthand.(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareEqual, cmp.Operator)
	assert.Equal(t, int64(5), cmp.Value)
}

func TestCompileCriteria_ArrayColumnAsymmetry(t *testing.T) {
	// Scalar operand on an array column: containment.
	anyEq, ok := compileCriteria(t, `{"tags": "x"}`).(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareAnyEqual, anyEq.Operator)
	assert.Empty(t, anyEq.ElementType)

	// List operand on an array column: plain array equality, operand cast to
	// the element type.
	eq, ok := compileCriteria(t, `{"tags": ["a", "b"]}`).(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareEqual, eq.Operator)
	assert.Equal(t, schema.FieldTypeString, eq.ElementType)

	all, ok := compileCriteria(t, `{"tags": {"$all": ["a", "b"]}}`).(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareContainsAll, all.Operator)

	ne, ok := compileCriteria(t, `{"tags": {"$ne": "x"}}`).(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareAllNotEqual, ne.Operator)

	neList, ok := compileCriteria(t, `{"tags": {"$ne": ["x"]}}`).(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareNotEqual, neList.Operator)
}

func TestCompileCriteria_InAndNin(t *testing.T) {
	in, ok := compileCriteria(t, `{"age": {"$in": [1, 2]}}`).(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareIn, in.Operator)

	nin, ok := compileCriteria(t, `{"age": {"$nin": [1, 2]}}`).(*Not)
	require.True(t, ok)
	inner, ok := nin.Child.(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareIn, inner.Operator)

	overlap, ok := compileCriteria(t, `{"tags": {"$in": ["a"]}}`).(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareOverlap, overlap.Operator)

	notOverlap, ok := compileCriteria(t, `{"tags": {"$nin": ["a"]}}`).(*Not)
	require.True(t, ok)
	inner, ok = notOverlap.Child.(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareOverlap, inner.Operator)
}

func TestCompileCriteria_Exists(t *testing.T) {
	notNull, ok := compileCriteria(t, `{"name": {"$exists": true}}`).(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareIsNotNull, notNull.Operator)

	isNull, ok := compileCriteria(t, `{"age": {"$exists": false}}`).(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareIsNull, isNull.Operator)
}

func TestCompileCriteria_Size(t *testing.T) {
	empty, ok := compileCriteria(t, `{"tags": {"$size": 0}}`).(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareLengthIsNull, empty.Operator)

	sized, ok := compileCriteria(t, `{"tags": {"$size": 3}}`).(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareLengthEqual, sized.Operator)
	assert.Equal(t, int64(3), sized.Value)
}

func TestCompileCriteria_DoubleNegation(t *testing.T) {
	inner := compileCriteria(t, `{"age": {"$lt": 18}}`)
	double := compileCriteria(t, `{"$not": {"$not": {"age": {"$lt": 18}}}}`)

	outer, ok := double.(*Not)
	require.True(t, ok)
	middle, ok := outer.Child.(*Not)
	require.True(t, ok)
	assert.Equal(t, inner, middle.Child)
}

func TestCompileCriteria_SingleChildCombinatorCollapses(t *testing.T) {
	direct := compileCriteria(t, `{"age": {"$lt": 18}}`)
	wrapped := compileCriteria(t, `{"$and": [{"age": {"$lt": 18}}]}`)
	assert.Equal(t, direct, wrapped)

	orWrapped := compileCriteria(t, `{"$or": [{"age": {"$lt": 18}}]}`)
	assert.Equal(t, direct, orWrapped)
}

func TestCompileCriteria_EmptyCombinatorsContributeNothing(t *testing.T) {
	assert.Nil(t, compileCriteria(t, `{"$and": []}`))
	assert.Nil(t, compileCriteria(t, `{"$or": []}`))
	assert.Nil(t, compileCriteria(t, `{"$nor": []}`))

	// An empty combinator alongside a real condition leaves just the
	// condition.
	pred := compileCriteria(t, `{"$or": [], "age": 5}`)
	_, ok := pred.(*Compare)
	assert.True(t, ok)
}

func TestCompileCriteria_NorIsNegatedDisjunction(t *testing.T) {
	pred, ok := compileCriteria(t, `{"$nor": [{"age": 1}, {"age": 2}]}`).(*Not)
	require.True(t, ok)
	or, ok := pred.Child.(*Or)
	require.True(t, ok)
	assert.Len(t, or.Children, 2)

	single, ok := compileCriteria(t, `{"$nor": [{"age": 1}]}`).(*Not)
	require.True(t, ok)
	_, ok = single.Child.(*Compare)
	assert.True(t, ok)
}

func TestCompileCriteria_BooleanTree(t *testing.T) {
	pred := compileCriteria(t,
		`{"$or": [{"age": {"$lt": 18}}, {"$and": [{"age": {"$gte": 65}}, {"name": {"$ne": "x"}}]}]}`)

	or, ok := pred.(*Or)
	require.True(t, ok)
	require.Len(t, or.Children, 2)

	lt, ok := or.Children[0].(*Compare)
	require.True(t, ok)
	assert.Equal(t, CompareLess, lt.Operator)

	and, ok := or.Children[1].(*And)
	require.True(t, ok)
	require.Len(t, and.Children, 2)
}

func TestCompileCriteria_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind query.ErrorKind
	}{
		{"unknown field", `{"missing": 1}`, query.ErrUnknownField},
		{"unknown operator", `{"age": {"$regex": "x"}}`, query.ErrUnknownOperator},
		{"in without list", `{"age": {"$in": 5}}`, query.ErrOperatorConstraint},
		{"nin without list", `{"age": {"$nin": 5}}`, query.ErrOperatorConstraint},
		{"all on scalar column", `{"age": {"$all": [1]}}`, query.ErrOperatorConstraint},
		{"all without list", `{"tags": {"$all": "x"}}`, query.ErrOperatorConstraint},
		{"size on scalar column", `{"age": {"$size": 0}}`, query.ErrOperatorConstraint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertKind(t, criteriaError(t, tt.raw), tt.kind)
		})
	}
}
