// Package fixtures holds Flagsmith API payloads and handlers for tests.
package fixtures

import (
	"io"
	"net/http"
	"sync/atomic"
)

const APIPath = "/api/v1/"

// ClientAPIKey selects remote evaluation; ServerAPIKey selects local evaluation.
const ClientAPIKey = "test_key"
const ServerAPIKey = "ser.test_key"

const Feature1Value = "some_value"
const Feature1Name = "feature_1"
const Feature1ID = 1

const EnvironmentJson = `
{
	"api_key": "B62qaMZNwfiqT76p38ggrQ",
	"project": {
		"name": "Test project",
		"organisation": {
			"feature_analytics": false,
			"name": "Test Org",
			"id": 1,
			"persist_trait_data": true,
			"stop_serving_flags": false
		},
		"id": 1,
		"hide_disabled_flags": false,
		"segments": [{
			"id": 1,
			"name": "Test Segment",
			"feature_states": [],
			"rules": [{
				"type": "ALL",
				"conditions": [],
				"rules": [{
					"type": "ALL",
					"rules": [],
					"conditions": [{
						"operator": "EQUAL",
						"property_": "foo",
						"value": "bar"
					}]
				}]
			}]
		}]
	},
	"segment_overrides": [],
	"id": 1,
	"feature_states": [{
		"multivariate_feature_state_values": [],
		"feature_state_value": "some_value",
		"id": 1,
		"featurestate_uuid": "40eb539d-3713-4720-bbd4-829dbef10d51",
		"feature": {
			"name": "feature_1",
			"type": "STANDARD",
			"id": 1
		},
		"segment_id": null,
		"enabled": true
	}]
}
`

const FlagsJson = `
[{
	"id": 1,
	"feature": {
		"id": 1,
		"name": "feature_1",
		"created_date": "2019-08-27T14:53:45.698555Z",
		"initial_value": null,
		"description": null,
		"default_enabled": false,
		"type": "STANDARD",
		"project": 1
	},
	"feature_state_value": "some_value",
	"enabled": true,
	"environment": 1,
	"identity": null,
	"feature_segment": null
}]
`

const IdentityResponseJson = `
{
	"flags": [{
		"id": 1,
		"feature": {
			"id": 1,
			"name": "feature_1",
			"created_date": "2019-08-27T14:53:45.698555Z",
			"initial_value": null,
			"description": null,
			"default_enabled": false,
			"type": "STANDARD",
			"project": 1
		},
		"feature_state_value": "some_value",
		"enabled": true,
		"environment": 1,
		"identity": null,
		"feature_segment": null
	}],
	"traits": [{
		"trait_key": "foo",
		"trait_value": "bar"
	}]
}
`

// API serves the flags, identities and environment-document endpoints
// under APIPath and counts the requests it receives.
type API struct {
	// Status, when non-zero, is returned for every request instead of a payload.
	Status int

	requests atomic.Int64
}

// Requests returns the number of requests served so far.
func (a *API) Requests() int64 {
	return a.requests.Load()
}

func (a *API) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	a.requests.Add(1)

	if a.Status != 0 {
		rw.WriteHeader(a.Status)
		return
	}

	var body string
	switch req.URL.Path {
	case APIPath + "flags/":
		body = FlagsJson
	case APIPath + "identities/":
		body = IdentityResponseJson
	case APIPath + "environment-document/":
		if req.Header.Get("X-Environment-Key") != ServerAPIKey {
			rw.WriteHeader(http.StatusForbidden)
			return
		}
		body = EnvironmentJson
	default:
		rw.WriteHeader(http.StatusNotFound)
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(rw, body)
}
