package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelkeep.ai/internal/protocol"
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

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	statusSchema := compile("status.schema.json")
	actSchema := compile("act.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "player_name":"Steve",
	  "capabilities":{"max_queue":8},
	  "auth":{"token":"eyJhbGciOiJIUzI1NiJ9.e30.x"}
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "session_id":"5b0c5a8e-1f7e-4b9b-a0a3-2f1b4f6f3c11",
	  "player_name":"Steve",
	  "resume_token":"resume_world_1_5b0c5a8e",
	  "admin":false,
	  "returning":true,
	  "world_id":"world_1",
	  "economy":{
	    "tick_rate_hz":5,
	    "currency":"Coins",
	    "max_waypoints":4,
	    "clan_create_cost":5000,
	    "claim_cost":142,
	    "weekly_rent":1000,
	    "plot_radius":25,
	    "max_members":5
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var act any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "tick":12,
	  "player":"Steve",
	  "instants":[
	    {"id":"I1","type":"BREAK_BLOCK","pos":[24,64,0],"block":"minecraft:stone"},
	    {"id":"I2","type":"INVENTORY_SYNC","inventory":[{"item":"minecraft:diamond","count":3}]},
	    {"id":"I3","type":"ZONE_CREATE","name":"Spawn","pos":[0,0,0],"pos2":[10,80,10],"flags":{"pvp":false}}
	  ]
	}`), &act)
	validate(actSchema, act)

	// A STATUS frame produced by the Go types must satisfy the schema.
	msg := protocol.StatusMsg{
		Type:            protocol.TypeStatus,
		ProtocolVersion: protocol.Version,
		Tick:            40,
		Player:          "Steve",
		Balance:         1200,
		Inventory:       []protocol.ItemStack{{Item: "minecraft:bread", Count: 16}},
		HUD:             &protocol.HUDObs{Mode: 3, Lines: []string{"[RED] Lvl 3 | XP 120", "1200 Coins"}},
		Clan: &protocol.ClanObs{
			ClanID: "C000001", Name: "Red", Tag: "[RED]", Level: 3, XP: 120, Treasury: 50, Members: []string{"Steve"},
		},
		Location: protocol.LocationObs{Pos: [3]int{1, 64, 1}, Dim: "overworld"},
		Effects:  []protocol.EffectObs{{Effect: "night_vision", Amplifier: 0, Source: "CLAN"}},
		Events:   []protocol.Event{{"t": 40, "type": "ACTION_RESULT", "ref": "I1", "ok": true}},
	}
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var status any
	if err := json.Unmarshal(b, &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	validate(statusSchema, status)
}
