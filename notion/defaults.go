package notion

func defaultBlocks() map[string]BlockFactory {
	return map[string]BlockFactory{
		"paragraph":          NewParagraphBlock,
		"heading_1":          NewHeadingBlock,
		"heading_2":          NewHeadingBlock,
		"heading_3":          NewHeadingBlock,
		"bulleted_list_item": NewBulletedListItemBlock,
		"numbered_list_item": NewNumberedListItemBlock,
		"to_do":              NewToDoBlock,
		"toggle":             NewToggleBlock,
		"child_page":         NewChildPageBlock,
		"child_database":     NewChildDatabaseBlock,
		"embed":              NewEmbedBlock,
		"image":              NewImageBlock,
		"audio":              NewAudioBlock,
		"video":              NewVideoBlock,
		"file":               NewFileBlock,
		"pdf":                NewPDFBlock,
		"bookmark":           NewBookmarkBlock,
		"callout":            NewCalloutBlock,
		"quote":              NewQuoteBlock,
		"equation":           NewEquationBlock,
		"divider":            NewDividerBlock,
		"table_of_contents":  NewTableOfContentsBlock,
		"breadcrumb":         NewBreadcrumbBlock,
		"column":             NewColumnBlock,
		"column_list":        NewColumnListBlock,
		"link_preview":       NewLinkPreviewBlock,
		"synced_block":       NewSyncedBlock,
		"template":           NewTemplateBlock,
		"link_to_page":       NewLinkToPageBlock,
		"code":               NewCodeBlock,
		"table":              NewTableBlock,
		"table_row":          NewTableRowBlock,
		"unsupported":        NewUnsupportedBlock,
	}
}

func defaultRichTexts() map[string]RichTextFactory {
	return map[string]RichTextFactory{
		"text":     NewTextRichText,
		"equation": NewEquationRichText,
		"mention":  NewMentionRichText,
	}
}

func defaultMentions() map[string]MentionFactory {
	return map[string]MentionFactory{
		"user":         NewUserMention,
		"page":         NewPageMention,
		"database":     NewDatabaseMention,
		"date":         NewDateMention,
		"link_preview": NewLinkPreviewMention,
	}
}

func defaultProperties() map[string]PropertyFactory {
	return map[string]PropertyFactory{
		"title":            NewGenericProperty,
		"rich_text":        NewGenericProperty,
		"number":           NewNumberProperty,
		"select":           NewSelectProperty,
		"multi_select":     NewMultiSelectProperty,
		"status":           NewStatusProperty,
		"date":             NewGenericProperty,
		"people":           NewGenericProperty,
		"files":            NewGenericProperty,
		"checkbox":         NewGenericProperty,
		"url":              NewGenericProperty,
		"email":            NewGenericProperty,
		"phone_number":     NewGenericProperty,
		"formula":          NewFormulaProperty,
		"relation":         NewRelationProperty,
		"rollup":           NewRollupProperty,
		"created_time":     NewGenericProperty,
		"created_by":       NewGenericProperty,
		"last_edited_time": NewGenericProperty,
		"last_edited_by":   NewGenericProperty,
	}
}

func defaultPropertyValues() map[string]PropertyValueFactory {
	return map[string]PropertyValueFactory{
		"title":            NewTitlePropertyValue,
		"rich_text":        NewRichTextPropertyValue,
		"number":           NewNumberPropertyValue,
		"select":           NewSelectPropertyValue,
		"status":           NewStatusPropertyValue,
		"multi_select":     NewMultiSelectPropertyValue,
		"date":             NewDatePropertyValue,
		"people":           NewPeoplePropertyValue,
		"files":            NewFilesPropertyValue,
		"checkbox":         NewCheckboxPropertyValue,
		"url":              NewURLPropertyValue,
		"email":            NewEmailPropertyValue,
		"phone_number":     NewPhoneNumberPropertyValue,
		"formula":          NewFormulaPropertyValue,
		"relation":         NewRelationPropertyValue,
		"rollup":           NewRollupPropertyValue,
		"created_time":     NewCreatedTimePropertyValue,
		"last_edited_time": NewLastEditedTimePropertyValue,
		"created_by":       NewCreatedByPropertyValue,
		"last_edited_by":   NewLastEditedByPropertyValue,
	}
}
