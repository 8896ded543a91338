package sqlinline

const QListTransactionsByUser = `--sql a4b6c8d0-1e3f-4527-b9a8-0d1c2b3a4e5f
select id, user_id, job_id, amount, kind, balance_before, balance_after, description, created_at
from token_transactions
where user_id = $1::uuid
order by created_at desc
limit $2::int;
`
