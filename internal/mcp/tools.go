package mcp

import (
	"context"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	pqnet "github.com/seresheim/penquest-pkgs/internal/net"

	"github.com/seresheim/penquest-pkgs/internal/session"
)

// activeSession is the singleton game session (one per stdio process).
var activeSession *GameSession

// gatewayURL is the PenQuest gateway websocket URL, set by main.
var gatewayURL string

// sessionOpts are the session timeouts, set by main.
var sessionOpts session.Options

// logger is the process logger, set by main.
var logger = zap.NewNop()

// SetGatewayURL sets the gateway websocket URL.
func SetGatewayURL(url string) {
	gatewayURL = url
}

// SetSessionOptions sets the session timeouts.
func SetSessionOptions(opts session.Options) {
	sessionOpts = opts
}

// SetLogger sets the process logger.
func SetLogger(log *zap.Logger) {
	logger = log
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), handleStartGame)
	s.AddTool(joinGameTool(), handleJoinGame)
	s.AddTool(getGameStateTool(), handleGetGameState)
	s.AddTool(buyEquipmentTool(), handleBuyEquipment)
	s.AddTool(playActionTool(), handlePlayAction)
	s.AddTool(selectActionsTool(), handleSelectActions)
	s.AddTool(leaveGameTool(), handleLeaveGame)
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Create a new PenQuest game lobby on the gateway, optionally add a bot "+
			"opponent, mark yourself ready, and wait for the game to start. Returns the game state "+
			"and the first pending decision. Without a bot this call blocks until another player "+
			"joins the lobby with join_game or a regular client."),
		mcp.WithString("scenario_id", mcp.Description("Scenario to play; empty keeps the gateway's default")),
		mcp.WithNumber("bot_type", mcp.Description("Bot opponent type to add to the lobby; 0 or omitted for none")),
		mcp.WithNumber("seed", mcp.Description("Optional random seed for the game")),
	)
}

func joinGameTool() mcp.Tool {
	return mcp.NewTool("join_game",
		mcp.WithDescription("Join an existing PenQuest lobby by its code, mark yourself ready, and "+
			"wait for the game to start. Returns the game state and the first pending decision."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Lobby code shared by the game's creator")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state and pending decision without submitting a response. Read-only."),
	)
}

func buyEquipmentTool() mcp.Tool {
	return mcp.NewTool("buy_equipment",
		mcp.WithDescription("Buy equipment from the shop and end the shopping phase. Use this when "+
			"the pending decision type is 'shop'. Pass an empty ids string to skip buying."),
		mcp.WithString("ids", mcp.Description("Space-separated shop equipment ids to buy (e.g. '7 12'), or empty to buy nothing")),
	)
}

func playActionTool() mcp.Tool {
	return mcp.NewTool("play_action",
		mcp.WithDescription("Play one of the offered action options. Use this when the pending decision "+
			"type is 'play_card'. Returns whether the action succeeded and the next pending decision."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the pending options list")),
	)
}

func selectActionsTool() mcp.Tool {
	return mcp.NewTool("select_actions",
		mcp.WithDescription("Pick new action cards from the offered choices. Use this when the pending "+
			"decision type is 'choose_actions'."),
		mcp.WithString("ids", mcp.Required(), mcp.Description("Space-separated action ids to pick from the choices list (e.g. '101 104')")),
	)
}

func leaveGameTool() mcp.Tool {
	return mcp.NewTool("leave_game",
		mcp.WithDescription("Leave the current game and close the gateway connection."),
	)
}

// --- Tool handlers ---

func handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession != nil {
		return mcp.NewToolResultError("A game is already running. Only one game at a time is supported."), nil
	}

	scenarioID := request.GetString("scenario_id", "")
	botType := request.GetInt("bot_type", 0)
	seed := request.GetInt("seed", 0)

	sess, err := NewGameSession(ctx, gatewayURL, sessionOpts, logger)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start session: %v", err), nil
	}

	game := sess.client.Session
	if err := game.CreateLobby(ctx, scenarioID, nil); err != nil {
		sess.close()
		return mcp.NewToolResultErrorf("Failed to create lobby: %v", err), nil
	}
	if seed != 0 {
		if err := game.SetSeed(ctx, seed); err != nil {
			sess.close()
			return mcp.NewToolResultErrorf("Failed to set seed: %v", err), nil
		}
	}
	if botType > 0 {
		if err := game.AddBot(ctx, botType); err != nil {
			sess.close()
			return mcp.NewToolResultErrorf("Failed to add bot: %v", err), nil
		}
	} else {
		if err := game.WaitForPlayers(ctx, 1, sessionOpts.InteractionTimeout); err != nil {
			sess.close()
			return mcp.NewToolResultErrorf("No second player joined: %v", err), nil
		}
	}
	if err := game.SetReady(ctx, true); err != nil {
		sess.close()
		return mcp.NewToolResultErrorf("Failed to set ready: %v", err), nil
	}

	activeSession = sess

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	resp.Lobby = pqnet.BuildLobbyView(game.Lobby())
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession != nil {
		return mcp.NewToolResultError("A game is already running. Only one game at a time is supported."), nil
	}

	code := request.GetString("code", "")
	if strings.TrimSpace(code) == "" {
		return mcp.NewToolResultError("code must not be empty"), nil
	}

	sess, err := NewGameSession(ctx, gatewayURL, sessionOpts, logger)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start session: %v", err), nil
	}

	game := sess.client.Session
	if err := game.JoinGame(ctx, code); err != nil {
		sess.close()
		return mcp.NewToolResultErrorf("Failed to join lobby %q: %v", code, err), nil
	}
	if err := game.SetReady(ctx, true); err != nil {
		sess.close()
		return mcp.NewToolResultErrorf("Failed to set ready: %v", err), nil
	}

	activeSession = sess

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	resp.Lobby = pqnet.BuildLobbyView(game.Lobby())
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game or join_game first."), nil
	}

	sess := activeSession
	resp := &ToolResponse{
		Lobby:    pqnet.BuildLobbyView(sess.client.Session.Lobby()),
		State:    pqnet.BuildStateView(sess.client.Session),
		Pending:  sess.currentPending(),
		GameOver: sess.isOver(),
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleBuyEquipment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game or join_game first."), nil
	}

	sess := activeSession
	pending := sess.currentPending()
	if pending == nil || pending.Type != DecisionShop {
		return mcp.NewToolResultError("Wrong tool: the pending decision is not 'shop'."), nil
	}

	ids, err := parseIDs(request.GetString("ids", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid ids: %v", err), nil
	}

	game := sess.client.Session
	if len(ids) > 0 {
		err = game.BuyEquipment(ctx, ids)
	} else {
		err = game.FinishShopping(ctx)
	}
	if err != nil {
		return mcp.NewToolResultErrorf("Shopping failed: %v", err), nil
	}

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	return finishTool(resp), nil
}

func handlePlayAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game or join_game first."), nil
	}

	sess := activeSession
	pending := sess.currentPending()
	if pending == nil || pending.Type != DecisionPlayCard {
		return mcp.NewToolResultError("Wrong tool: the pending decision is not 'play_card'."), nil
	}

	options := sess.playOptions()
	index := request.GetInt("index", -1)
	if index < 0 || index >= len(options) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(options)-1), nil
	}

	game := sess.client.Session
	st := game.State()
	played := options[index].Action(st).Name
	success, _, err := game.PlayAction(ctx, options[index].Request(st))
	if err != nil {
		return mcp.NewToolResultErrorf("Play failed: %v", err), nil
	}

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	resp.Played = played
	resp.Success = &success
	return finishTool(resp), nil
}

func handleSelectActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game or join_game first."), nil
	}

	sess := activeSession
	pending := sess.currentPending()
	if pending == nil || pending.Type != DecisionChooseActions {
		return mcp.NewToolResultError("Wrong tool: the pending decision is not 'choose_actions'."), nil
	}

	ids, err := parseIDs(request.GetString("ids", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid ids: %v", err), nil
	}
	if pending.Amount > 0 && len(ids) != pending.Amount {
		return mcp.NewToolResultErrorf("Must select exactly %d action(s), got %d.", pending.Amount, len(ids)), nil
	}

	if err := sess.client.Session.SelectActions(ctx, ids); err != nil {
		return mcp.NewToolResultErrorf("Selection failed: %v", err), nil
	}

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	return finishTool(resp), nil
}

func handleLeaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running."), nil
	}

	sess := activeSession
	activeSession = nil

	if err := sess.client.Session.LeaveGame(ctx); err != nil {
		sess.close()
		return mcp.NewToolResultErrorf("Leave failed: %v", err), nil
	}
	sess.close()

	return mcp.NewToolResultText(respondJSON(&ToolResponse{GameOver: true, Result: "left"})), nil
}

// finishTool wraps a pending-decision response, clearing the singleton when
// the game is over so a new one can start.
func finishTool(resp *ToolResponse) *mcp.CallToolResult {
	if resp.GameOver {
		if activeSession != nil {
			activeSession.close()
			activeSession = nil
		}
	}
	return mcp.NewToolResultText(respondJSON(resp))
}

// parseIDs parses a space-separated list of integers.
func parseIDs(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Fields(s) {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
