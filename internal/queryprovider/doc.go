// Package queryprovider owns the dialect-specific SQL of the messages table.
//
// A Provider produces four deterministic scripts:
//
//   - GetCreateTableScript: table DDL plus non-unique indexes on content_id,
//     content_type and error_type
//   - GetExistsTableScript: a metadata-catalog lookup for the table
//   - GetInsertMessageScript: a parameterized insert of the eleven
//     non-key columns
//   - GetFilterScript: a SELECT built from a message.Query through a
//     sqlbuilder.SelectBuilder
//
// Column types for content, data and error_details follow the serializer:
// text types when it reports IsText, binary types otherwise.
//
// Providers hold no mutable state and are safe for concurrent use.
package queryprovider
