package conversation

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/billbot/internal/common"
)

const (
	replyWelcome = "👋 Welcome to BillBot!\n\nI'll help you generate invoices instantly. First, let me get your company details.\n\n📝 What is your Company Name?"
	replyAskName = "📝 What is your Company Name?"

	replyAskTaxID = "🔢 What is your GSTIN number? (Type 'skip' if not applicable)"

	replySetupComplete = "🎉 Setup complete! You're all set.\n\n📋 To create an invoice, just send me an order like:\n\n\"Bill for Ramesh Kirana:\n- 10 Rice bags at ₹50 each\n- 5 Oil bottles at ₹120 each\"\n\nTry it now!"

	replyGreetingCancelled = "👋 Hi! I've cancelled the previous incomplete order.\n\n📋 Send me a new order to create an invoice!"
	replyGreetingReady     = "👋 Hello! Ready to create invoices.\n\n📋 Send me an order like:\n\"Bill for Ramesh: 10 Rice at ₹50\""

	replyReset = "🔄 Account reset! Let's start fresh.\n\nSend 'hi' to begin onboarding."
	replyHelp  = "📚 **BillBot Commands:**\n\n• Send an order to create invoice\n• 'reset' - Start onboarding again\n• 'help' - Show this message\n\n📸 You can also send images of handwritten bills!"

	replyStoreFailed  = "⚠️ Something went wrong on our side. Please try again in a moment."
	replyUnknownState = "Unknown state"
)

func replyNameStored(name string) string {
	return fmt.Sprintf("✅ Company: %s\n\n📍 What is your company address? (Type 'skip' if you want to add it later)", name)
}

func replyExtractionFailed(err error) string {
	return fmt.Sprintf("❌ Sorry, I couldn't understand that. Error: %s\n\nPlease try again.", causeText(err))
}

func replyRenderFailed(err error) string {
	return fmt.Sprintf("❌ Sorry, invoice generation failed: %s", causeText(err))
}

func replyInvoiceReady(customer, url string) string {
	return fmt.Sprintf("✅ Invoice generated successfully!\n\n🧾 Customer: %s\n📥 Download: %s", customer, url)
}

// causeText strips the AppError code prefix so users see only the underlying reason.
func causeText(err error) string {
	var ae *common.AppError
	if errors.As(err, &ae) && ae.Cause != nil {
		err = ae.Cause
	}
	if errors.Is(err, common.ErrNoInput) {
		return "the message was empty"
	}
	return err.Error()
}
