package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

// Actions is the operation set the model can invoke. The bot layer
// implements it once per incoming message, closing over the conversation
// context. Each method returns the message to show the user.
type Actions interface {
	Register() (string, error)
	AddUsers() (string, error)
	RemoveUsers() (string, error)
	GroupDetails() (string, error)
	StartStandup(restart bool) (string, error)
	CloseStandup() (string, error)
	ToggleHistory(enable bool) (string, error)
	CheckHistory() (string, error)
	ViewHistory() (string, error)
	ViewPersonalHistory() (string, error)
	AddParkingLot(item string) (string, error)
	ViewParkingLot() (string, error)
	ClearParkingLot() (string, error)
	SetCustomInstructions(instructions string) (string, error)
	MySettings() (string, error)
	SetDefaultStandup(groupIDOrName string) (string, error)
	ListStandups() (string, error)
	AddWork(item string) (string, error)
	ViewWork() (string, error)
	ClearWork() (string, error)
}

const dispatchInstructions = "You are a Standup Agent assistant that understands natural language commands. " +
	"Use the tools available to you to figure out what the user wants to do."

const purposeText = "I can help you conduct standups by managing your standup group, adding or removing users, " +
	"starting or closing standup sessions, managing history settings, viewing historical standups, and saving " +
	"parking lot items for future standups (use !parkinglot or just tell me what you want to discuss)."

// maxToolRounds bounds the tool-call loop; real conversations resolve in
// one or two rounds.
const maxToolRounds = 5

func toolDefs() []openai.Tool {
	plain := func(name, description string) openai.Tool {
		return openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        name,
				Description: description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		}
	}

	tools := []openai.Tool{
		plain("register", "Register a new standup group"),
		plain("add", "Add users to the standup group"),
		plain("remove", "Remove users from the standup group"),
		plain("groupDetails", "Show standup group information"),
		plain("startStandup", "Start a new standup session"),
		plain("restartStandup", "Restart the current standup session"),
		plain("closeStandup", "End the current standup session"),
		plain("checkHistory", "Check the current history saving setting"),
		plain("viewHistory", "View historical standup information"),
		plain("viewPersonalHistory", "View your personal standup history"),
		plain("viewParkingLot", "View current parking lot items"),
		plain("clearParkingLot", "Clear all items from the parking lot"),
		plain("mySettings", "Show your personal standup settings"),
		plain("listStandups", "Show standups you participate in"),
		plain("viewTodaysWork", "Show your work items from your default standup group"),
		plain("clearTodaysWork", "Clear your work items from your default standup group"),
		plain("purpose", "Explain the purpose of the bot"),
	}

	tools = append(tools,
		openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "toggleHistory",
				Description: "Enable or disable history saving for the standup group",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"enable": map[string]any{
							"type":        "boolean",
							"description": "Enable or disable history saving",
						},
					},
					"required": []string{"enable"},
				},
			},
		},
		openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "addParkingLot",
				Description: "Add an item to discuss in the next standup's parking lot",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"item": map[string]any{
							"type":        "string",
							"description": "The item to add to the parking lot",
						},
					},
					"required": []string{"item"},
				},
			},
		},
		openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "setDefaultStandup",
				Description: "Set your default standup group",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"standupIdOrName": map[string]any{
							"type":        "string",
							"description": "The ID or name of the standup group to set as default",
						},
					},
					"required": []string{"standupIdOrName"},
				},
			},
		},
		openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "addWork",
				Description: "Add a work item to your default standup group",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"item": map[string]any{
							"type":        "string",
							"description": "The work item to add",
						},
					},
					"required": []string{"item"},
				},
			},
		},
		openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "setClosingInstructions",
				Description: "Set the group's custom instructions for the closing message after each standup",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"instructions": map[string]any{
							"type":        "string",
							"description": "The instructions to follow when closing a standup",
						},
					},
					"required": []string{"instructions"},
				},
			},
		},
	)
	return tools
}

// Dispatch interprets free text against the tool set and executes the
// matching actions. The returned string is the reply to send when the tools
// themselves didn't already produce one.
func (c *Client) Dispatch(ctx context.Context, text string, actions Actions) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: dispatchInstructions},
		{Role: openai.ChatMessageRoleUser, Content: text},
	}
	tools := toolDefs()

	for round := 0; round < maxToolRounds; round++ {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}

		choice := resp.Choices[0].Message
		if len(choice.ToolCalls) == 0 {
			return choice.Content, nil
		}

		messages = append(messages, choice)
		for _, call := range choice.ToolCalls {
			output, err := c.execute(call, actions)
			if err != nil {
				return "", err
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    output,
			})
		}
	}

	log.Printf("tool loop did not settle after %d rounds", maxToolRounds)
	return "", nil
}

func (c *Client) execute(call openai.ToolCall, actions Actions) (string, error) {
	switch call.Function.Name {
	case "register":
		return actions.Register()
	case "add":
		return actions.AddUsers()
	case "remove":
		return actions.RemoveUsers()
	case "groupDetails":
		return actions.GroupDetails()
	case "startStandup":
		return actions.StartStandup(false)
	case "restartStandup":
		return actions.StartStandup(true)
	case "closeStandup":
		return actions.CloseStandup()
	case "checkHistory":
		return actions.CheckHistory()
	case "viewHistory":
		return actions.ViewHistory()
	case "viewPersonalHistory":
		return actions.ViewPersonalHistory()
	case "viewParkingLot":
		return actions.ViewParkingLot()
	case "clearParkingLot":
		return actions.ClearParkingLot()
	case "mySettings":
		return actions.MySettings()
	case "listStandups":
		return actions.ListStandups()
	case "viewTodaysWork":
		return actions.ViewWork()
	case "clearTodaysWork":
		return actions.ClearWork()
	case "purpose":
		return purposeText, nil

	case "setDefaultStandup":
		var args struct {
			StandupIDOrName string `json:"standupIdOrName"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", fmt.Errorf("parsing setDefaultStandup arguments: %w", err)
		}
		return actions.SetDefaultStandup(args.StandupIDOrName)

	case "addWork":
		var args struct {
			Item string `json:"item"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", fmt.Errorf("parsing addWork arguments: %w", err)
		}
		return actions.AddWork(args.Item)

	case "toggleHistory":
		var args struct {
			Enable bool `json:"enable"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", fmt.Errorf("parsing toggleHistory arguments: %w", err)
		}
		return actions.ToggleHistory(args.Enable)

	case "addParkingLot":
		var args struct {
			Item string `json:"item"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", fmt.Errorf("parsing addParkingLot arguments: %w", err)
		}
		return actions.AddParkingLot(args.Item)

	case "setClosingInstructions":
		var args struct {
			Instructions string `json:"instructions"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", fmt.Errorf("parsing setClosingInstructions arguments: %w", err)
		}
		return actions.SetCustomInstructions(args.Instructions)

	default:
		return fmt.Sprintf("unknown tool %q", call.Function.Name), nil
	}
}
