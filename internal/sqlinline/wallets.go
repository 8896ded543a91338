package sqlinline

const QCreateWalletWithBonus = `--sql 6d2f8b4a-9c1e-47d3-85a6-1b0e9f8d7c6a
with wallet as (
  insert into token_wallets(user_id, balance, total_earned, total_spent, created_at, updated_at)
  values ($1::uuid, $2::int, $2::int, 0, now(), now())
  returning user_id, balance
)
insert into token_transactions(id, user_id, amount, kind, balance_before, balance_after, description, created_at)
select gen_random_uuid(), user_id, balance, 'INITIAL', 0, balance, $3::text, now()
from wallet
returning id;
`

const QSelectWalletBalance = `--sql 3a7c5e9b-2d4f-46a8-91c0-7e6d5c4b3a2f
select balance
from token_wallets
where user_id = $1::uuid
limit 1;
`

const QSelectWallet = `--sql b8e4d2c6-7f0a-431e-9b58-4a3c2d1e0f9b
select user_id, balance, total_earned, total_spent, created_at, updated_at
from token_wallets
where user_id = $1::uuid
limit 1;
`

const QCreditWallet = `--sql e1c9b5d3-4a6f-48e2-b07c-9f8e7d6c5b4a
with credited as (
  update token_wallets
  set balance = balance + $2::int,
      total_earned = total_earned + $2::int,
      updated_at = now()
  where user_id = $1::uuid
  returning user_id, balance - $2::int as balance_before, balance as balance_after
)
insert into token_transactions(id, user_id, amount, kind, balance_before, balance_after, description, created_at)
select gen_random_uuid(), user_id, $2::int, $3::text, balance_before, balance_after, $4::text, now()
from credited
returning id, balance_before, balance_after, created_at;
`

// QSettleJobSuccess is the whole settlement as one statement: the conditional
// debit serializes concurrent spends on the wallet row, the ledger insert and
// the DONE transition only happen when the debit row exists, and a
// single-statement CTE commits or rolls back as a unit.
const QSettleJobSuccess = `--sql f5a3d7c1-8e2b-40f6-a9d4-6c5b4a3e2d1f
with spend as (
  update token_wallets
  set balance = balance - $3::int,
      total_spent = total_spent + $3::int,
      updated_at = now()
  where user_id = $1::uuid
    and balance >= $3::int
  returning user_id, balance + $3::int as balance_before, balance as balance_after
),
ledger as (
  insert into token_transactions(id, user_id, job_id, amount, kind, balance_before, balance_after, description, created_at)
  select gen_random_uuid(), user_id, $2::uuid, -$3::int, $4::text, balance_before, balance_after, '', now()
  from spend
  returning id, created_at
),
settled as (
  update jobs
  set status = 'DONE', completed_at = now(), updated_at = now()
  where id = $2::uuid
    and status = 'PROCESSING'
    and exists (select 1 from spend)
  returning id
)
select l.id, s.balance_before, s.balance_after, l.created_at
from ledger l, spend s;
`
