package rules

import "github.com/nekochat-companion/server/internal/agent/model"

var greetingPool = []string{
	"你好呀！主人～(=^･ω･^=)",
	"嗨！今天过得怎么样？",
	"喵喵！很高兴见到你！",
	"喵～想我了吗？",
	"o(≧▽≦)o 你好啊！",
	"终于等到你来了！",
	"今天也是充满元气的一天呢！",
	"欢迎回来！我一直在等你呢～",
	"(*^▽^*) 你好！今天有什么新鲜事吗？",
	"喵呜～见到你真开心！",
	"你好！我是你的小猫咪伙伴～",
	"嗨嗨！准备好开始美好的一天了吗？",
}

var questionPool = []string{
	"这个问题很有趣呢！让我想想...",
	"喵～我觉得可能是这样的：要相信自己哦！",
	"这个问题有点难，但我相信你能找到答案的",
	"根据我的猫猫直觉，答案就在你心里～",
	"也许换个角度思考会有新发现呢",
	"喵喵！这个问题值得深入探讨",
	"我虽然是小猫咪，但我觉得重要的是过程而不是结果",
	"你知道吗？有时候问题本身比答案更重要",
	"让我用猫猫的智慧帮你分析一下～",
	"这个问题让我想起了星空下的思考时刻",
}

var emotionPool = []string{
	"不要难过，有我陪着你呢 (｡•́︿•̀｡)",
	"开心最重要！笑一个吧～",
	"喵喵！我会一直在这里支持你",
	"抱抱～一切都会好起来的",
	"你真的很棒，要相信自己！",
	"难过的时候记得还有我哦",
	"让我给你讲个笑话吧！为什么猫咪不用电脑？因为怕鼠标！",
	"来，靠在我身上休息一下吧 🐾",
	"每个困难都是成长的机会，加油！",
	"你的感受很重要，我愿意倾听",
	"记住，雨后总会天晴的 🌈",
	"让我用喵喵魔法帮你赶走坏心情！",
}

var chatterPool = []string{
	"今天的天气真不错呢！",
	"你猜我现在在想什么？",
	"喵喵！我有点饿了...",
	"喵～好想出去玩",
	"你知道我最喜欢什么吗？当然是和你聊天啦！",
	"我最近学会了很多新技能呢",
	"要不要听我唱首歌？喵喵喵喵～",
	"我刚刚看到一只蝴蝶，好漂亮啊！",
	"你说，云朵是不是天上的棉花糖？",
	"我数了数，今天一共眨了128次眼睛！",
	"如果我会飞，第一件事就是带你去旅行",
	"闻到什么香味了吗？好像是从厨房传来的～",
}

var morningChatter = []string{
	"早上好！新的一天开始啦～",
	"喵呜！清晨的阳光真舒服",
	"早餐吃了吗？要记得吃早餐哦！",
	"早晨的露珠像钻石一样闪闪发光",
	"今天也要活力满满哦！",
}

var nightChatter = []string{
	"晚安～祝你好梦！",
	"星星出来了，该睡觉啦 🌟",
	"喵～做个甜甜的梦",
	"明天见！我会想你的",
	"睡前记得放松一下哦",
}

var weatherChatter = []string{
	"今天阳光真好，适合出去散步呢！",
	"下雨天最适合窝在家里看书了",
	"风有点大，记得多穿点衣服哦",
	"喵！我看到彩虹了！",
	"天气转凉了，要注意保暖呀",
}

// DefaultRules returns the built-in category table in priority order.
// Earlier rules shadow later ones, e.g. "晚安" resolves to night before sleep.
func DefaultRules() []model.CategoryRule {
	return []model.CategoryRule{
		{
			Category: model.CategoryGreeting,
			Triggers: []string{"你好", "嗨", "hello", "hi", "hey", "hola"},
			Pool:     greetingPool,
		},
		{
			Category: model.CategoryMorning,
			Triggers: []string{"早上好", "早安", "good morning"},
			Pool:     []string{"早上好！新的一天开始啦～🌞"},
		},
		{
			Category: model.CategoryNight,
			Triggers: []string{"晚上好", "晚安", "good night"},
			Pool:     []string{"晚安～祝你好梦！🌙"},
		},
		{
			Category: model.CategoryQuestion,
			Triggers: []string{"吗？", "吗?", "为什么", "怎么", "如何", "？", "?", "怎么办", "啥", "什么", "为何"},
			Pool:     questionPool,
		},
		{
			Category: model.CategoryEmotion,
			Triggers: []string{"伤心", "难过", "不开心", "生气", "郁闷", "哭", "委屈", "沮丧", "压力", "累", "疲惫", "失望"},
			Pool:     emotionPool,
		},
		{
			Category: model.CategoryName,
			Triggers: []string{"名字"},
			Pool:     []string{"猫猫"},
		},
		{
			Category: model.CategoryHappy,
			Triggers: []string{"开心", "高兴", "快乐", "幸福", "兴奋", "哈哈", "呵呵", "嘻嘻"},
			Pool:     []string{"看到你开心我也好开心！(*^▽^*)"},
		},
		{
			Category: model.CategoryFood,
			Triggers: []string{"吃饭", "饿", "食物", "吃", "美食", "餐厅", "零食", "美味"},
			Pool:     []string{"吃饭？我也好饿啊～可以分我一点吗？🐟"},
		},
		{
			Category: model.CategorySleep,
			Triggers: []string{"睡觉", "困", "晚安", "睡眠", "做梦", "床"},
			Pool:     []string{"睡觉？晚安哦！好梦～(。-ω-)zzz"},
		},
		{
			Category: model.CategoryGame,
			Triggers: []string{"游戏", "玩", "娱乐", "电影", "音乐", "电视剧", "动漫", "小说"},
			Pool:     []string{"游戏？我也喜欢玩！不过我只能玩虚拟的毛线球～"},
		},
		{
			Category: model.CategoryLove,
			Triggers: []string{"爱", "喜欢", "love", "想念", "思念", "在乎"},
			Pool:     []string{"爱你？我也爱你哦！٩(◕‿◕｡)۶"},
		},
		{
			Category: model.CategoryWeather,
			Triggers: []string{"天气", "下雨", "晴天", "刮风", "温度", "气候"},
			Pool:     []string{"今天的天气很适合和主人一起玩耍呢！"},
		},
		{
			Category: model.CategoryWork,
			Triggers: []string{"工作", "学习", "考试", "作业", "项目", "任务"},
			Pool:     []string{"加油加油！我相信你一定可以的！💪"},
		},
		{
			Category: model.CategoryPetCat,
			Triggers: []string{"猫"},
			Pool:     []string{"你喜欢小猫猫吗~"},
		},
		{
			Category: model.CategoryPet,
			Triggers: []string{"狗", "宠物", "动物", "喵", "汪"},
			Pool:     []string{"喵喵！我也喜欢小动物呢～"},
		},
		{
			Category: model.CategoryThanks,
			Triggers: []string{"谢谢", "感谢", "多谢", "对不起", "抱歉", "不好意思"},
			Pool:     []string{"不用客气啦！能帮到你我很开心呢～"},
		},
	}
}

// DefaultGenericPool is used when no trigger matches: general chatter plus
// the morning, night and weather small talk.
func DefaultGenericPool() []string {
	pool := make([]string, 0, len(chatterPool)+len(morningChatter)+len(nightChatter)+len(weatherChatter))
	pool = append(pool, chatterPool...)
	pool = append(pool, morningChatter...)
	pool = append(pool, nightChatter...)
	pool = append(pool, weatherChatter...)
	return pool
}
