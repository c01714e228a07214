// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it loads configuration, opens the store,
// resolves the acting user, and registers every tool. No business logic
// lives here — only wiring.
package server

import (
	"fmt"

	"github.com/benkaiser/mob-mcp-crm-sub000/internal/config"
	"github.com/benkaiser/mob-mcp-crm-sub000/internal/crm"
	"github.com/benkaiser/mob-mcp-crm-sub000/internal/crmtools"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function flushes the logger and closes the store's
// database connection; it must be called on shutdown (typically via defer)
// and is always non-nil.
func New() (*server.MCPServer, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, noop, fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, noop, fmt.Errorf("creating logger: %w", err)
	}

	store, err := crm.New(crm.Config{
		DataDir:        cfg.DataDir,
		DuplicateLimit: cfg.DuplicateLimit,
		PageSize:       cfg.PageSize,
	}, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("store close", zap.Error(err))
		}
		_ = logger.Sync()
	}

	userID, err := store.EnsureUser(cfg.UserID, cfg.UserName)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("ensuring user: %w", err)
	}
	logger.Info("crm server ready",
		zap.String("data_dir", cfg.DataDir),
		zap.String("user_id", userID),
	)

	s := server.NewMCPServer(
		"crm",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerTools(s, store, userID)

	return s, cleanup, nil
}

// noop is a no-op cleanup function returned on early failures.
func noop() {}

// newLogger builds a production zap logger writing to stderr, so log
// output never interferes with MCP's stdio transport on stdout.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// registerTools registers all CRM MCP tools with the server.
func registerTools(s *server.MCPServer, store *crm.Store, userID string) {
	// --- Contacts ---
	contactCreate := crmtools.NewContactCreateTool(store, userID)
	s.AddTool(contactCreate.Definition(), contactCreate.Handle)

	contactGet := crmtools.NewContactGetTool(store, userID)
	s.AddTool(contactGet.Definition(), contactGet.Handle)

	contactUpdate := crmtools.NewContactUpdateTool(store, userID)
	s.AddTool(contactUpdate.Definition(), contactUpdate.Handle)

	contactList := crmtools.NewContactListTool(store, userID)
	s.AddTool(contactList.Definition(), contactList.Handle)

	contactDelete := crmtools.NewContactDeleteTool(store, userID)
	s.AddTool(contactDelete.Definition(), contactDelete.Handle)

	contactRestore := crmtools.NewContactRestoreTool(store, userID)
	s.AddTool(contactRestore.Definition(), contactRestore.Handle)

	// --- Merge & duplicate detection ---
	contactMerge := crmtools.NewContactMergeTool(store, userID)
	s.AddTool(contactMerge.Definition(), contactMerge.Handle)

	findDuplicates := crmtools.NewFindDuplicatesTool(store, userID)
	s.AddTool(findDuplicates.Definition(), findDuplicates.Handle)

	// --- Notes & contact methods ---
	noteAdd := crmtools.NewNoteAddTool(store, userID)
	s.AddTool(noteAdd.Definition(), noteAdd.Handle)

	noteList := crmtools.NewNoteListTool(store, userID)
	s.AddTool(noteList.Definition(), noteList.Handle)

	methodAdd := crmtools.NewContactMethodAddTool(store, userID)
	s.AddTool(methodAdd.Definition(), methodAdd.Handle)

	methodList := crmtools.NewContactMethodListTool(store, userID)
	s.AddTool(methodList.Definition(), methodList.Handle)

	// --- Tags ---
	tagAdd := crmtools.NewTagAddTool(store, userID)
	s.AddTool(tagAdd.Definition(), tagAdd.Handle)

	tagRemove := crmtools.NewTagRemoveTool(store, userID)
	s.AddTool(tagRemove.Definition(), tagRemove.Handle)

	tagList := crmtools.NewTagListTool(store, userID)
	s.AddTool(tagList.Definition(), tagList.Handle)

	// --- Relationships ---
	relAdd := crmtools.NewRelationshipAddTool(store, userID)
	s.AddTool(relAdd.Definition(), relAdd.Handle)

	relRemove := crmtools.NewRelationshipRemoveTool(store, userID)
	s.AddTool(relRemove.Definition(), relRemove.Handle)

	relList := crmtools.NewRelationshipListTool(store, userID)
	s.AddTool(relList.Definition(), relList.Handle)

	// --- Reminders ---
	reminderAdd := crmtools.NewReminderAddTool(store, userID)
	s.AddTool(reminderAdd.Definition(), reminderAdd.Handle)

	reminderList := crmtools.NewReminderListTool(store, userID)
	s.AddTool(reminderList.Definition(), reminderList.Handle)

	// --- Food preferences & custom fields ---
	foodSet := crmtools.NewFoodPreferenceSetTool(store, userID)
	s.AddTool(foodSet.Definition(), foodSet.Handle)

	foodGet := crmtools.NewFoodPreferenceGetTool(store, userID)
	s.AddTool(foodGet.Definition(), foodGet.Handle)

	fieldSet := crmtools.NewCustomFieldSetTool(store, userID)
	s.AddTool(fieldSet.Definition(), fieldSet.Handle)

	fieldList := crmtools.NewCustomFieldListTool(store, userID)
	s.AddTool(fieldList.Definition(), fieldList.Handle)
}

// serverInstructions returns the system instructions that tell the AI
// how to use the CRM effectively.
func serverInstructions() string {
	return `You have access to a personal CRM for remembering the people in the user's life.

## What it stores
Contacts and everything attached to them: notes, ways to reach them
(contact_method_*), tags, relationships between contacts, reminders,
food preferences, and free-form custom fields.

## Core habits
- When the user mentions a new person, offer to save them with contact_create.
- When the user shares a detail about someone (a story, a preference, a date),
  attach it to the right contact: note_add for stories, food_preference_set for
  food, reminder_add for dates, custom_field_set for anything structured.
- Use contact_list or contact_get to look people up before adding duplicates.

## Relationships
relationship_add links two contacts and records the inverse automatically:
adding "parent" from Anne to Ada also records "child" from Ada to Anne.
Use relationship_list to answer "how do these people know each other".

## Duplicates and merging
- contact_find_duplicates scans for contacts that share a full name, email,
  or phone number. Run it when the user suspects duplicate entries.
- contact_merge folds a secondary contact into a primary one: all attached
  records move over, missing profile fields are filled in, and the secondary
  is soft-deleted. ALWAYS confirm with the user which contact should survive
  before merging — the merge moves data and cannot be re-run meaningfully.
- contact_delete is a soft delete; contact_restore brings a contact back.

## Results
Tools return JSON payloads. Summarize them for the user in natural language;
never paste raw JSON unless asked.`
}
