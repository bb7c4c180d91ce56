package models

// Firestore collection names
const (
	UsersCollection            = "users"
	MembershipPlansCollection  = "membershipPlans"
	PaymentsCollection         = "payments"
	ApparelsCollection         = "apparels"
	CoachesCollection          = "coaches"
	ClassesCollection          = "classes"
	CashiersCollection         = "cashiers"
	CheckoutsCollection        = "checkouts"
	PaymentCallbacksCollection = "paymentCallbacks"
)
