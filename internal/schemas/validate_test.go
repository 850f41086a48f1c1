package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobBoardSchema_IsValidJSON(t *testing.T) {
	var v interface{}
	require.NoError(t, json.Unmarshal(jobBoardSchema, &v))

	_, err := loadJobBoardSchema()
	assert.NoError(t, err)
}

func TestValidateJobBoard(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"empty jobs", `{"jobs": [], "apiVersion": "1"}`, false},
		{"one job", `{"jobs": [{"id": "a", "title": "t", "isListed": true}]}`, false},
		{"extra fields tolerated", `{"jobs": [{"id": "a", "foo": 1}], "other": true}`, false},
		{"numeric api version", `{"jobs": [], "apiVersion": 1}`, false},
		{"null api version", `{"jobs": [], "apiVersion": null}`, false},
		{"missing jobs", `{"apiVersion": "1"}`, true},
		{"jobs is object", `{"jobs": {"id": "a"}}`, true},
		{"jobs is null", `{"jobs": null}`, true},
		{"jobs is string", `{"jobs": "none"}`, true},
		{"job item not object", `{"jobs": [1, 2]}`, false},
		{"posting field types not checked", `{"jobs": [{"id": 7, "title": null, "isListed": "yes"}]}`, false},
		{"api version wrong type", `{"jobs": [], "apiVersion": true}`, true},
		{"top-level array", `[]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobBoard([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
				assert.NotEmpty(t, ve.Errors)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateJobBoard_NotJSON(t *testing.T) {
	err := ValidateJobBoard([]byte("<html>oops</html>"))
	require.Error(t, err)
	var de *DocumentError
	assert.ErrorAs(t, err, &de)
}

func TestSchemaLoadError(t *testing.T) {
	cause := errors.New("bad keyword")
	err := &SchemaLoadError{Name: "job_board.schema.json", Message: "invalid schema", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to load schema job_board.schema.json")
}

func TestValidationError_Message(t *testing.T) {
	err := ValidateJobBoard([]byte(`{"apiVersion": "1"}`))
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "(root)", ve.Errors[0].Field)
	assert.Contains(t, ve.Error(), "validation failed")
}
