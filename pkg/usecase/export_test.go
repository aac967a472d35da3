package usecase

// TitleCase is exported for testing
var TitleCase = titleCase

// ComposeReport is exported for testing
var ComposeReport = composeReport
