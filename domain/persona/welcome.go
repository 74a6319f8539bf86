package persona

import "strings"

// Welcome is the text shown when a session starts.
const Welcome = `خوش آمدید به کارگاه مذاکره جذب سرمایه!

شما در نقش بنیان‌گذار یک استارتاپ EdTech هستید که قصد جذب ۵۰ میلیارد تومان سرمایه دارید.
در این جلسه با سه نفر روبرو خواهید شد:
1. آقای محمدی - سرمایه‌گذار محتاط
2. خانم اکبری - سرمایه‌گذار ریسک‌پذیر
3. آقای رضایی - بنیان‌گذار استارتاپ رقیب

جلسه شامل ۴ مرحله است:
1. معرفی (۲ دقیقه)
2. سوالات مالی (۳ دقیقه)
3. چالش رقابتی (۳ دقیقه)
4. مذاکره نهایی (۲ دقیقه)

لطفا با معرفی کوتاه استارتاپ خود شروع کنید...`

// Farewell is the system reply to an explicit exit.
const Farewell = "جلسه به پایان رسید."

// IsExitWord reports whether msg asks to leave the session.
func IsExitWord(msg string) bool {
	switch strings.ToLower(strings.TrimSpace(msg)) {
	case "exit", "quit", "خروج":
		return true
	default:
		return false
	}
}
