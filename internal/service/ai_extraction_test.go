package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carvalue/internal/model"
)

func TestFlexString(t *testing.T) {
	var resp AIAttributesResponse
	err := json.Unmarshal([]byte(`{"make":" Toyota ","year":2019,"mileage":45000.0,"condition":null}`), &resp)
	require.NoError(t, err)
	assert.Equal(t, FlexString("Toyota"), resp.Make)
	assert.Equal(t, FlexString("2019"), resp.Year)
	assert.Equal(t, FlexString("45000.0"), resp.Mileage)
	assert.Equal(t, FlexString(""), resp.Condition)

	assert.Error(t, json.Unmarshal([]byte(`{"year":true}`), &resp))
}

func TestAIFieldExtractor_Fill(t *testing.T) {
	gen := &fakeGenerator{out: `Sure! {"make": "mahindra", "model": "XUV700", "year": "2031", "mileage": "12k", "condition": "Excellent"}`}
	ex := NewAIFieldExtractor(gen, zap.NewNop())

	got, err := ex.Fill(context.Background(), "mahindra xuv700", []string{"make", "model", "year", "mileage", "condition"}, 2025)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleAttributes{
		Make:      "Mahindra",
		Model:     "XUV700",
		Condition: model.ConditionExcellent,
	}, got, "implausible year and non-numeric mileage are dropped")
}

func TestAIFieldExtractor_OnlyRequestedFields(t *testing.T) {
	gen := &fakeGenerator{out: `{"make": "Tata", "model": "Nexon"}`}
	ex := NewAIFieldExtractor(gen, zap.NewNop())

	got, err := ex.Fill(context.Background(), "tata nexon", []string{"model"}, 2025)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleAttributes{Model: "Nexon"}, got)
}

func TestAIFieldExtractor_Errors(t *testing.T) {
	ex := NewAIFieldExtractor(&fakeGenerator{err: errors.New("timeout")}, zap.NewNop())
	_, err := ex.Fill(context.Background(), "anything", []string{"make"}, 2025)
	assert.Error(t, err)

	ex = NewAIFieldExtractor(&fakeGenerator{out: "I could not find anything"}, zap.NewNop())
	_, err = ex.Fill(context.Background(), "anything", []string{"make"}, 2025)
	assert.Error(t, err)

	gen := &fakeGenerator{}
	ex = NewAIFieldExtractor(gen, zap.NewNop())
	got, err := ex.Fill(context.Background(), "anything", nil, 2025)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.Empty(t, gen.prompts, "nothing to ask for")
}
