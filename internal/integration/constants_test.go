package integration_test

const (
	// User related constants
	TestUserName  = "alice"
	TestUserPiID  = "pi-alice"
	TestAdminName = "root"
	TestAdminPiID = "pi-root"

	// Token related constants
	TestJWTSecret = "integration-test-secret"
	TestPiToken   = "pi-access-token"

	// Category related constants
	TestCategoryName = "Technology"
	TestCategorySlug = "technology"

	// Article related constants
	TestArticleTitle   = "Test Article"
	TestArticleContent = "Some article content."
)
