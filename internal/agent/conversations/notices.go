package conversations

import "fmt"

// System lines shown by the companion. They go through the same display
// stage as ordinary replies.
const (
	NoticeWelcome     = "你好！我是你的桌面宠物，来和我聊天吧！(=^･ω･^=)"
	NoticeBackendOn   = "AI猫娘模式已开启！现在我可以更智能地和你聊天了喵～🌟"
	NoticeBackendOff  = "AI模式已关闭，切换回普通猫猫对话模式～"
	NoticeLoadSuccess = "AI模型加载成功！现在可以使用智能对话啦～🚀"
	NoticeLoadFailed  = "AI模型加载失败，将使用普通对话模式 😢"
	NoticeBusy        = "正在思考中喵～"
)

// connectingNotice names the service being probed, e.g. "Ollama".
func connectingNotice(label string) string {
	return fmt.Sprintf("正在连接%s服务，请确保%s已运行... ⏳", label, label)
}
