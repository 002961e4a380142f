package assist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"

	"github.com/virtualis/alis/internal/domain/admin"
	"github.com/virtualis/alis/internal/domain/messaging"
	"github.com/virtualis/alis/internal/domain/orders"
	"github.com/virtualis/alis/internal/platform/gateway"
)

// The assistant's tool surface is a closed set. Adding a tool means adding
// a schema here and a case in Dispatch.
const (
	ToolStageOrder        = "stage_order"
	ToolInviteProvider    = "invite_provider"
	ToolListProviders     = "list_providers"
	ToolCreateTeamChannel = "create_team_channel"
)

// orderStager stages orders on the assistant's behalf.
type orderStager interface {
	Stage(ctx context.Context, o *orders.StagedOrder) error
}

// providerDirectory covers the admin operations the assistant may invoke.
type providerDirectory interface {
	ListUsers(ctx context.Context, hospitalID string) ([]*admin.HospitalUser, error)
	CreateUser(ctx context.Context, u *admin.HospitalUser) error
}

// channelCreator opens team channels.
type channelCreator interface {
	CreateChannel(ctx context.Context, ch *messaging.TeamChannel) error
}

// Dispatcher executes assistant tool calls against the clinical services.
// Every call produces a JSON result string that is fed back to the model;
// tool failures are reported in-band, not as transport errors.
type Dispatcher struct {
	orders    orderStager
	directory providerDirectory
	channels  channelCreator
}

func NewDispatcher(o orderStager, d providerDirectory, ch channelCreator) *Dispatcher {
	return &Dispatcher{orders: o, directory: d, channels: ch}
}

// toolResult is the envelope handed back to the model.
type toolResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func (r toolResult) encode() string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"message":"failed to encode tool result"}`
	}
	return string(b)
}

func resultErr(format string, args ...interface{}) string {
	return toolResult{Success: false, Message: fmt.Sprintf(format, args...)}.encode()
}

// CallContext carries the request identity a tool call executes under.
type CallContext struct {
	HospitalID string
	UserID     uuid.UUID
	Patient    *PatientContext
}

type stageOrderArgs struct {
	OrderType string `json:"order_type"`
	Name      string `json:"name"`
	Priority  string `json:"priority"`
	Rationale string `json:"rationale"`
}

type inviteProviderArgs struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Specialty string `json:"specialty"`
}

type createChannelArgs struct {
	Name        string `json:"name"`
	ChannelType string `json:"channel_type"`
	PatientID   string `json:"patient_id"`
}

// Dispatch runs one tool call and returns the JSON result to re-inject into
// the exchange. Unknown tool names are reported to the model rather than
// failing the turn.
func (d *Dispatcher) Dispatch(ctx context.Context, call gateway.ToolCall, cc CallContext) string {
	switch call.Name {
	case ToolStageOrder:
		return d.stageOrder(ctx, call.Arguments, cc)
	case ToolInviteProvider:
		return d.inviteProvider(ctx, call.Arguments, cc)
	case ToolListProviders:
		return d.listProviders(ctx, cc)
	case ToolCreateTeamChannel:
		return d.createChannel(ctx, call.Arguments, cc)
	default:
		return resultErr("unknown tool: %s", call.Name)
	}
}

func (d *Dispatcher) stageOrder(ctx context.Context, rawArgs string, cc CallContext) string {
	if cc.Patient == nil {
		return resultErr("no patient is currently open; ask the clinician to open a patient chart before staging orders")
	}
	patientID, err := uuid.Parse(cc.Patient.ID)
	if err != nil {
		return resultErr("the open chart (%s) is not a live patient record, so orders cannot be staged against it", cc.Patient.ID)
	}
	var args stageOrderArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return resultErr("invalid stage_order arguments: %v", err)
	}
	o := &orders.StagedOrder{
		HospitalID: cc.HospitalID,
		PatientID:  patientID,
		OrderType:  args.OrderType,
		Name:       args.Name,
		Priority:   args.Priority,
		StagedBy:   cc.UserID,
		Source:     orders.SourceAssistant,
	}
	if args.Rationale != "" {
		o.Rationale = &args.Rationale
	}
	if err := d.orders.Stage(ctx, o); err != nil {
		return resultErr("could not stage order: %v", err)
	}
	return toolResult{
		Success: true,
		Message: fmt.Sprintf("staged %s order %q for signature", o.OrderType, o.Name),
		Data:    map[string]interface{}{"order_id": o.ID, "status": o.Status},
	}.encode()
}

func (d *Dispatcher) inviteProvider(ctx context.Context, rawArgs string, cc CallContext) string {
	var args inviteProviderArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return resultErr("invalid invite_provider arguments: %v", err)
	}
	u := &admin.HospitalUser{
		HospitalID: cc.HospitalID,
		Email:      args.Email,
		Name:       args.Name,
		Role:       args.Role,
	}
	if args.Specialty != "" {
		u.Specialty = &args.Specialty
	}
	if err := d.directory.CreateUser(ctx, u); err != nil {
		return resultErr("could not invite provider: %v", err)
	}
	return toolResult{
		Success: true,
		Message: fmt.Sprintf("invited %s (%s) as %s", u.Name, u.Email, u.Role),
		Data:    map[string]interface{}{"user_id": u.ID},
	}.encode()
}

func (d *Dispatcher) listProviders(ctx context.Context, cc CallContext) string {
	users, err := d.directory.ListUsers(ctx, cc.HospitalID)
	if err != nil {
		return resultErr("could not list providers: %v", err)
	}
	type provider struct {
		Name      string `json:"name"`
		Role      string `json:"role"`
		Specialty string `json:"specialty,omitempty"`
		Active    bool   `json:"active"`
	}
	out := make([]provider, 0, len(users))
	for _, u := range users {
		p := provider{Name: u.Name, Role: u.Role, Active: u.IsActive}
		if u.Specialty != nil {
			p.Specialty = *u.Specialty
		}
		out = append(out, p)
	}
	return toolResult{Success: true, Data: out}.encode()
}

func (d *Dispatcher) createChannel(ctx context.Context, rawArgs string, cc CallContext) string {
	var args createChannelArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return resultErr("invalid create_team_channel arguments: %v", err)
	}
	ch := &messaging.TeamChannel{
		HospitalID:  cc.HospitalID,
		Name:        args.Name,
		ChannelType: args.ChannelType,
		CreatedBy:   cc.UserID,
	}
	if args.PatientID != "" {
		pid, err := uuid.Parse(args.PatientID)
		if err != nil {
			return resultErr("invalid patient_id: %s", args.PatientID)
		}
		ch.PatientID = &pid
	} else if args.ChannelType == "patient_care" && cc.Patient != nil {
		if pid, err := uuid.Parse(cc.Patient.ID); err == nil {
			ch.PatientID = &pid
		}
	}
	if err := d.channels.CreateChannel(ctx, ch); err != nil {
		return resultErr("could not create channel: %v", err)
	}
	return toolResult{
		Success: true,
		Message: fmt.Sprintf("created channel %q", ch.Name),
		Data:    map[string]interface{}{"channel_id": ch.ID},
	}.encode()
}

// ToolSchemas returns the function definitions advertised to the model.
func ToolSchemas() []gateway.ToolSchema {
	return []gateway.ToolSchema{
		{
			Name:        ToolStageOrder,
			Description: "Stage a clinical order (imaging, lab, medication, consult, procedure) for the current patient. The order is not active until a clinician signs it.",
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]interface{}{
					"order_type": map[string]interface{}{
						"type": "string",
						"enum": []string{"imaging", "lab", "medication", "consult", "procedure"},
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Exact name of the order, e.g. 'CT chest with contrast'",
					},
					"priority": map[string]interface{}{
						"type": "string",
						"enum": []string{"STAT", "Urgent", "Today", "Routine"},
					},
					"rationale": map[string]interface{}{
						"type":        "string",
						"description": "Clinical reasoning for the order",
					},
				},
				"required": []string{"order_type", "name"},
			},
		},
		{
			Name:        ToolInviteProvider,
			Description: "Invite a new provider to the hospital workspace by email.",
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]interface{}{
					"email": map[string]interface{}{"type": "string"},
					"name":  map[string]interface{}{"type": "string"},
					"role": map[string]interface{}{
						"type": "string",
						"enum": []string{"admin", "clinician", "nurse", "viewer"},
					},
					"specialty": map[string]interface{}{"type": "string"},
				},
				"required": []string{"email", "name", "role"},
			},
		},
		{
			Name:        ToolListProviders,
			Description: "List the providers registered in the current hospital.",
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        ToolCreateTeamChannel,
			Description: "Create a team messaging channel. Use channel_type 'patient_care' for channels tied to a patient.",
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{"type": "string"},
					"channel_type": map[string]interface{}{
						"type": "string",
						"enum": []string{"patient_care", "department", "consult"},
					},
					"patient_id": map[string]interface{}{
						"type":        "string",
						"description": "UUID of the patient for patient_care channels",
					},
				},
				"required": []string{"name", "channel_type"},
			},
		},
	}
}
