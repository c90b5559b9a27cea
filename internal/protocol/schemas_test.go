package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, raw string) {
		t.Helper()
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatalf("sample: %v", err)
		}
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	reject := func(s *jsonschema.Schema, raw string) {
		t.Helper()
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatalf("sample: %v", err)
		}
		if err := s.Validate(v); err == nil {
			t.Fatalf("sample passed a schema it must fail: %s", raw)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	inputSchema := compile("input.schema.json")
	stateSchema := compile("state.schema.json")

	validate(helloSchema, `{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "player_name":"ostrich1",
	  "capabilities":{"max_queue":8}
	}`)
	reject(helloSchema, `{"type":"HELLO","protocol_version":"1.0","player_name":""}`)

	validate(welcomeSchema, `{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "match_id":"m_20260831_1",
	  "slot":0,
	  "mode":"team",
	  "seed":1337,
	  "tick_rate_hz":60,
	  "frame":0,
	  "tuning_digest":"`+hex64+`"
	}`)
	reject(welcomeSchema, `{
	  "type":"WELCOME","protocol_version":"1.0","match_id":"m","slot":4,
	  "mode":"team","seed":1,"tick_rate_hz":60,"frame":0,
	  "tuning_digest":"`+hex64+`"
	}`)

	validate(inputSchema, `{"type":"INPUT","protocol_version":"1.0","frame":120,"input":5}`)
	reject(inputSchema, `{"type":"INPUT","protocol_version":"1.0","frame":120,"input":128}`)

	validate(stateSchema, `{
	  "type":"STATE",
	  "protocol_version":"1.0",
	  "frame":120,
	  "digest":"`+hex64+`",
	  "render":{
	    "frame":120,
	    "wave":1,
	    "waveState":"playing",
	    "gameOver":false,
	    "mode":"team",
	    "idleSecs":2.5,
	    "humans":[],
	    "enemies":[],
	    "eggs":[],
	    "hand":{"visible":false,"phase":0,"x":160,"y":-20,"targetSlot":-1,"platformsDestroyed":false}
	  }
	}`)
	reject(stateSchema, `{"type":"STATE","protocol_version":"1.0","frame":120,"render":{"frame":120}}`)
}

const hex64 = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
