package nlp

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type recordingActions struct {
	calls        []string
	lastItem     string
	lastEnable   bool
	instructions string
}

func (r *recordingActions) note(name string) (string, error) {
	r.calls = append(r.calls, name)
	return name + " done", nil
}

func (r *recordingActions) Register() (string, error)     { return r.note("register") }
func (r *recordingActions) AddUsers() (string, error)     { return r.note("add") }
func (r *recordingActions) RemoveUsers() (string, error)  { return r.note("remove") }
func (r *recordingActions) GroupDetails() (string, error) { return r.note("groupDetails") }
func (r *recordingActions) StartStandup(restart bool) (string, error) {
	if restart {
		return r.note("restartStandup")
	}
	return r.note("startStandup")
}
func (r *recordingActions) CloseStandup() (string, error) { return r.note("closeStandup") }
func (r *recordingActions) ToggleHistory(enable bool) (string, error) {
	r.lastEnable = enable
	return r.note("toggleHistory")
}
func (r *recordingActions) CheckHistory() (string, error) { return r.note("checkHistory") }
func (r *recordingActions) ViewHistory() (string, error)  { return r.note("viewHistory") }
func (r *recordingActions) ViewPersonalHistory() (string, error) {
	return r.note("viewPersonalHistory")
}
func (r *recordingActions) AddParkingLot(item string) (string, error) {
	r.lastItem = item
	return r.note("addParkingLot")
}
func (r *recordingActions) ViewParkingLot() (string, error)  { return r.note("viewParkingLot") }
func (r *recordingActions) ClearParkingLot() (string, error) { return r.note("clearParkingLot") }
func (r *recordingActions) SetCustomInstructions(instructions string) (string, error) {
	r.instructions = instructions
	return r.note("setClosingInstructions")
}
func (r *recordingActions) MySettings() (string, error)   { return r.note("mySettings") }
func (r *recordingActions) ListStandups() (string, error) { return r.note("listStandups") }
func (r *recordingActions) SetDefaultStandup(groupIDOrName string) (string, error) {
	r.lastItem = groupIDOrName
	return r.note("setDefaultStandup")
}
func (r *recordingActions) AddWork(item string) (string, error) {
	r.lastItem = item
	return r.note("addWork")
}
func (r *recordingActions) ViewWork() (string, error)  { return r.note("viewTodaysWork") }
func (r *recordingActions) ClearWork() (string, error) { return r.note("clearTodaysWork") }

func toolCall(name, arguments string) openai.ToolCall {
	return openai.ToolCall{
		ID:   "call-1",
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      name,
			Arguments: arguments,
		},
	}
}

func TestExecuteRoutesPlainTools(t *testing.T) {
	c := &Client{}
	for _, name := range []string{
		"register", "add", "remove", "groupDetails", "startStandup",
		"restartStandup", "closeStandup", "checkHistory", "viewHistory",
		"viewPersonalHistory", "viewParkingLot", "clearParkingLot",
		"mySettings", "listStandups", "viewTodaysWork", "clearTodaysWork",
	} {
		actions := &recordingActions{}
		output, err := c.execute(toolCall(name, "{}"), actions)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(actions.calls) != 1 || actions.calls[0] != name {
			t.Fatalf("%s routed to %v", name, actions.calls)
		}
		if output != name+" done" {
			t.Fatalf("%s output = %q", name, output)
		}
	}
}

func TestExecuteParsesArguments(t *testing.T) {
	c := &Client{}
	actions := &recordingActions{}

	if _, err := c.execute(toolCall("toggleHistory", `{"enable": true}`), actions); err != nil {
		t.Fatalf("toggleHistory: %v", err)
	}
	if !actions.lastEnable {
		t.Fatal("enable flag not parsed")
	}

	if _, err := c.execute(toolCall("addParkingLot", `{"item": "discuss oncall"}`), actions); err != nil {
		t.Fatalf("addParkingLot: %v", err)
	}
	if actions.lastItem != "discuss oncall" {
		t.Fatalf("item = %q", actions.lastItem)
	}

	if _, err := c.execute(toolCall("setClosingInstructions", `{"instructions": "be brief"}`), actions); err != nil {
		t.Fatalf("setClosingInstructions: %v", err)
	}
	if actions.instructions != "be brief" {
		t.Fatalf("instructions = %q", actions.instructions)
	}

	if _, err := c.execute(toolCall("addWork", `{"item": "shipped the release"}`), actions); err != nil {
		t.Fatalf("addWork: %v", err)
	}
	if actions.lastItem != "shipped the release" {
		t.Fatalf("work item = %q", actions.lastItem)
	}

	if _, err := c.execute(toolCall("setDefaultStandup", `{"standupIdOrName": "engineering"}`), actions); err != nil {
		t.Fatalf("setDefaultStandup: %v", err)
	}
	if actions.lastItem != "engineering" {
		t.Fatalf("group ref = %q", actions.lastItem)
	}
}

func TestExecuteMalformedArguments(t *testing.T) {
	c := &Client{}
	if _, err := c.execute(toolCall("addParkingLot", `{not json`), &recordingActions{}); err == nil {
		t.Fatal("malformed arguments must error")
	}
}

func TestExecutePurpose(t *testing.T) {
	c := &Client{}
	actions := &recordingActions{}
	output, err := c.execute(toolCall("purpose", "{}"), actions)
	if err != nil {
		t.Fatalf("purpose: %v", err)
	}
	if output != purposeText {
		t.Fatalf("purpose output = %q", output)
	}
	if len(actions.calls) != 0 {
		t.Fatalf("purpose must not invoke actions, got %v", actions.calls)
	}
}
