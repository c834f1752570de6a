package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/akashwav/ConnectGo/internal/infrastructure/cache/port"
	qport "github.com/akashwav/ConnectGo/internal/infrastructure/queue/port"
	"github.com/akashwav/ConnectGo/internal/infrastructure/realtime"
	"github.com/akashwav/ConnectGo/internal/pkg/chat/application/usecase"
	"github.com/akashwav/ConnectGo/internal/pkg/chat/persistence/repository/adapter"
	"github.com/akashwav/ConnectGo/internal/pkg/chat/presentation/controller"
	useradapter "github.com/akashwav/ConnectGo/internal/repository/adapter"
)

// Deps carries the infrastructure collaborators the chat routes are built on.
// Cache and Queue are optional; nil disables the membership cache and the
// write-behind state update respectively.
type Deps struct {
	Pool          *pgxpool.Pool
	Cache         cacheport.Cache
	Queue         qport.Client
	Registry      *realtime.Registry
	Dispatcher    *realtime.Dispatcher
	MembershipTTL time.Duration
	Socket        controller.SocketOptions
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes.
func RegisterRoutes(g *gin.RouterGroup, deps Deps) {
	repo := adapter.NewPgChatRepository(deps.Pool)
	users := useradapter.NewPgUserRepository(deps.Pool)

	participants := usecase.NewListParticipantsUseCase(repo, deps.Cache, deps.MembershipTTL)
	joinUC := usecase.NewJoinConversationUseCase(participants)

	accessCtl := controller.NewAccessChatController(usecase.NewAccessChatUseCase(repo))
	listCtl := controller.NewListChatsController(usecase.NewListChatsUseCase(repo), users)
	sendMsgCtl := controller.NewSendMessageController(usecase.NewSendMessageUseCase(repo), participants, deps.Queue)
	getMsgCtl := controller.NewGetMessageController(usecase.NewGetMessageUseCase(repo))
	markReadCtl := controller.NewMarkChatReadController(usecase.NewMarkChatReadUseCase(repo))
	searchCtl := controller.NewSearchUsersController(users)
	socketCtl := controller.NewChatSocketController(deps.Registry, deps.Dispatcher, joinUC, deps.Socket)

	// POST /api/v1/chat -> access or create the direct chat with a peer
	g.POST("/chat", accessCtl.Handle())

	// GET /api/v1/chat?user_id= -> the viewer's chat list, latest activity first
	g.GET("/chat", listCtl.Handle())

	// POST /api/v1/chat/:chatId -> send a message into a chat
	g.POST("/chat/:chatId", sendMsgCtl.Handle())

	// GET /api/v1/chat/:chatId/messages -> fetch message history, oldest first
	g.GET("/chat/:chatId/messages", getMsgCtl.Handle())

	// POST /api/v1/chat/:chatId/read -> clear the viewer's unread counter
	g.POST("/chat/:chatId/read", markReadCtl.Handle())

	// GET /api/v1/user?search= -> peer lookup for starting a chat
	g.GET("/user", searchCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for realtime chat
	g.GET("/chat/ws", socketCtl.Handle())
}
