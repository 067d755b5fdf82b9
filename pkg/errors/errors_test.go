package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderingTable(t *testing.T) {
	clientFacing := map[Code]int{
		CodeValidation:    http.StatusBadRequest,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeForbidden:     http.StatusForbidden,
		CodeNotFound:      http.StatusNotFound,
		CodeConflict:      http.StatusConflict,
		CodeStateConflict: http.StatusUnprocessableEntity,
	}
	for code, status := range clientFacing {
		meta := MetadataFor(code)
		assert.Equal(t, status, meta.HTTPStatus, code)
	}

	for _, code := range []Code{CodeInternal, CodeDependency, CodePayment} {
		meta := MetadataFor(code)
		assert.GreaterOrEqual(t, meta.HTTPStatus, 500, code)
		assert.NotEmpty(t, meta.PublicMessage, code)
	}

	assert.True(t, MetadataFor(CodeValidation).DetailsAllowed)
	assert.False(t, MetadataFor(CodeInternal).DetailsAllowed)
	assert.Equal(t, MetadataFor(CodeInternal), MetadataFor("TEAPOT"))
}

func TestTypedErrorChain(t *testing.T) {
	cause := stdErrors.New("redis: connection refused")
	err := fmt.Errorf("checkin: %w", Wrap(CodeDependency, cause, "load class").WithDetails("retry"))

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, CodeDependency))
	assert.False(t, Is(err, CodeInternal))
	assert.False(t, Is(cause, CodeDependency))

	typed := As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "load class", typed.Message())
	assert.Equal(t, "retry", typed.Details())
	assert.Equal(t, "DEPENDENCY_ERROR: load class", typed.Error())

	assert.Nil(t, As(nil))
	var nilErr *Error
	assert.Equal(t, CodeInternal, nilErr.Code())
	assert.Nil(t, nilErr.Unwrap())
}

func TestDump(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))

	d := Dump(Wrap(CodeDependency, stdErrors.New("i/o timeout"), "ping redis"))
	assert.Equal(t, CodeDependency, d.Code)
	assert.Len(t, d.Chain, 2)
	assert.Nil(t, d.Postgres)
	assert.NotContains(t, d.LogFields(), "pg_code")
}

func TestDumpPostgresDrivers(t *testing.T) {
	cases := map[string]error{
		"pgx": &pgconn.PgError{Code: "23505", ConstraintName: "idx_checkins_user_class", TableName: "checkins"},
		"pq":  &pq.Error{Code: "23505", Constraint: "idx_checkins_user_class", Table: "checkins"},
	}
	for name, cause := range cases {
		t.Run(name, func(t *testing.T) {
			d := Dump(Wrap(CodeConflict, fmt.Errorf("insert checkin: %w", cause), "already checked in"))
			require.NotNil(t, d.Postgres)
			assert.Equal(t, "23505", d.Postgres.SQLState)
			assert.Equal(t, "idx_checkins_user_class", d.Postgres.Constraint)
			assert.Equal(t, "checkins", d.LogFields()["pg_table"])
			assert.Len(t, d.Chain, 3)
		})
	}
}
